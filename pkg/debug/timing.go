package debug

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/kptimemory/pkg/profiler"
)

var (
	debugTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	debugHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	debugDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TargetTiming accumulates the time spent inside the handles of one target.
type TargetTiming struct {
	Name     string
	Laps     int
	Duration time.Duration
}

// TimedFactory wraps a profiler.Factory to record the wall time between start and
// stop of every handle, independent of the enabled measurement kinds.
type TimedFactory struct {
	inner profiler.Factory

	mu      sync.Mutex
	timings map[string]*TargetTiming
}

// NewTimedFactory wraps a factory with timing instrumentation.
func NewTimedFactory(inner profiler.Factory) *TimedFactory {
	return &TimedFactory{
		inner:   inner,
		timings: make(map[string]*TargetTiming),
	}
}

// NewHandle implements profiler.Factory.
func (f *TimedFactory) NewHandle(name string) profiler.Handle {
	return &timedHandle{name: name, inner: f.inner.NewHandle(name), factory: f}
}

func (f *TimedFactory) add(name string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.timings[name]
	if !ok {
		t = &TargetTiming{Name: name}
		f.timings[name] = t
	}
	t.Laps++
	t.Duration += d
}

// Timings returns the accumulated timings sorted by name.
func (f *TimedFactory) Timings() []TargetTiming {
	f.mu.Lock()
	defer f.mu.Unlock()
	timings := make([]TargetTiming, 0, len(f.timings))
	for _, t := range f.timings {
		timings = append(timings, *t)
	}
	sort.Slice(timings, func(i, j int) bool {
		return timings[i].Name < timings[j].Name
	})
	return timings
}

type timedHandle struct {
	name    string
	inner   profiler.Handle
	factory *TimedFactory
	started time.Time
}

func (h *timedHandle) Start() {
	h.started = time.Now()
	h.inner.Start()
}

func (h *timedHandle) Stop() {
	h.inner.Stop()
	if h.started.IsZero() {
		return
	}
	h.factory.add(h.name, time.Since(h.started))
	h.started = time.Time{}
}

// TimingReport prints a styled timing summary per target.
func TimingReport(w io.Writer, timings []TargetTiming) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("Target Timing Report"))
	fmt.Fprintln(w, debugDim.Render(strings.Repeat("═", 60)))
	fmt.Fprintf(w, "  %s  %s  %s\n",
		debugHeader.Render("TARGET                            "),
		debugHeader.Render("LAPS    "),
		debugHeader.Render("DURATION    "))
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 60)))

	var total time.Duration
	for _, t := range timings {
		fmt.Fprintf(w, "  %-36s %-10d %v\n", t.Name, t.Laps, t.Duration)
		total += t.Duration
	}
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 60)))
	fmt.Fprintf(w, "  %-36s %-10s %v\n",
		lipgloss.NewStyle().Bold(true).Render("TOTAL"), "", total)
}
