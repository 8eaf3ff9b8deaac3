// Package benchmark measures the overhead the connector adds to each Kokkos callback.
package benchmark

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/danpilch/kptimemory/pkg/kokkosp"
	"github.com/danpilch/kptimemory/pkg/output"
)

// Options configures a benchmark run.
type Options struct {
	Iterations int
	Warmup     int
}

// DefaultOptions returns sensible benchmark defaults.
func DefaultOptions() Options {
	return Options{
		Iterations: 1000,
		Warmup:     100,
	}
}

// Result holds benchmark results for a single callback family.
type Result struct {
	Family    string
	Latencies []time.Duration
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	StdDev    time.Duration
}

// Overhead holds the Go runtime allocation counters.
type Overhead struct {
	AllocBytes uint64
	AllocCount uint64
	GCPauses   uint32
}

// Sub returns the counters accumulated since before.
func (o Overhead) Sub(before Overhead) Overhead {
	return Overhead{
		AllocBytes: o.AllocBytes - before.AllocBytes,
		AllocCount: o.AllocCount - before.AllocCount,
		GCPauses:   o.GCPauses - before.GCPauses,
	}
}

const distributionBuckets = 12

var (
	bmTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bmHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	bmDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type family struct {
	name  string
	setup func(c *kokkosp.Connector) func()
}

// families lists the measured callback pairs. Setup runs once and returns the
// operation timed on every iteration.
var families = []family{
	{name: "parallel_for", setup: func(c *kokkosp.Connector) func() {
		return func() {
			var id uint64
			c.BeginParallelFor("benchmark", 0, &id)
			c.EndParallelFor(id)
		}
	}},
	{name: "parallel_reduce", setup: func(c *kokkosp.Connector) func() {
		return func() {
			var id uint64
			c.BeginParallelReduce("benchmark", 0, &id)
			c.EndParallelReduce(id)
		}
	}},
	{name: "parallel_scan", setup: func(c *kokkosp.Connector) func() {
		return func() {
			var id uint64
			c.BeginParallelScan("benchmark", 0, &id)
			c.EndParallelScan(id)
		}
	}},
	{name: "region", setup: func(c *kokkosp.Connector) func() {
		return func() {
			c.PushProfileRegion("benchmark")
			c.PopProfileRegion()
		}
	}},
	{name: "section", setup: func(c *kokkosp.Connector) func() {
		var id uint32
		c.CreateProfileSection("benchmark", &id)
		return func() {
			c.StartProfileSection(id)
			c.StopProfileSection(id)
		}
	}},
}

// Families returns the names of the benchmarked callback families.
func Families() []string {
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.name
	}
	return names
}

// Run benchmarks each callback family against an initialized connector.
func Run(c *kokkosp.Connector, opts Options) []Result {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var results []Result

	for _, fam := range families {
		op := fam.setup(c)

		for i := 0; i < opts.Warmup; i++ {
			op()
		}

		latencies := make([]time.Duration, opts.Iterations)
		for i := 0; i < opts.Iterations; i++ {
			start := time.Now()
			op()
			latencies[i] = time.Since(start)
		}

		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		results = append(results, Result{
			Family:    fam.name,
			Latencies: latencies,
			P50:       percentile(latencies, 0.50),
			P95:       percentile(latencies, 0.95),
			P99:       percentile(latencies, 0.99),
			StdDev:    stddev(latencies),
		})
	}

	return results
}

// MeasureOverhead returns the runtime allocation counters.
func MeasureOverhead() Overhead {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Overhead{
		AllocBytes: m.TotalAlloc,
		AllocCount: m.Mallocs,
		GCPauses:   m.NumGC,
	}
}

// RenderResults outputs styled benchmark results.
func RenderResults(w io.Writer, results []Result, overhead Overhead) {
	fmt.Fprintln(w, bmTitle.Render("Connector Self-Benchmark"))
	fmt.Fprintln(w, bmDim.Render(strings.Repeat("═", 84)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s %s %s %s %s\n",
		bmHeader.Render("CALLBACK           "),
		bmHeader.Render("P50        "),
		bmHeader.Render("P95        "),
		bmHeader.Render("P99        "),
		bmHeader.Render("STDDEV     "),
		bmHeader.Render("DISTRIBUTION"))
	fmt.Fprintln(w, "  "+bmDim.Render(strings.Repeat("─", 84)))

	for _, r := range results {
		fmt.Fprintf(w, "  %-20s %-12v %-12v %-12v %-12v %s\n",
			r.Family, r.P50, r.P95, r.P99, r.StdDev, distribution(r.Latencies))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bmTitle.Render("Runtime Overhead"))
	fmt.Fprintln(w, bmDim.Render(strings.Repeat("─", 40)))
	fmt.Fprintf(w, "  Memory allocated: %s\n", lipgloss.NewStyle().Bold(true).Render(humanize.IBytes(overhead.AllocBytes)))
	fmt.Fprintf(w, "  Allocations:      %s\n", lipgloss.NewStyle().Bold(true).Render(humanize.Comma(int64(overhead.AllocCount))))
	fmt.Fprintf(w, "  GC pauses:        %s\n", lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d", overhead.GCPauses)))
}

// distribution renders the histogram of the latencies up to p99.
func distribution(sorted []time.Duration) string {
	if len(sorted) == 0 {
		return ""
	}
	cut := sorted[:max(1, int(math.Ceil(0.99*float64(len(sorted)))))]
	values := make([]float64, len(cut))
	for i, d := range cut {
		values[i] = float64(d)
	}
	return output.Sparkline(output.Distribution(values, distributionBuckets))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func stddev(values []time.Duration) time.Duration {
	if len(values) < 2 {
		return 0
	}
	var sum, sumSq float64
	for _, v := range values {
		f := float64(v)
		sum += f
		sumSq += f * f
	}
	n := float64(len(values))
	mean := sum / n
	variance := (sumSq / n) - (mean * mean)
	if variance < 0 {
		variance = 0
	}
	return time.Duration(math.Sqrt(variance))
}
