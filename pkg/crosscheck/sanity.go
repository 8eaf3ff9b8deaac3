package crosscheck

import (
	"fmt"
	"math"

	"github.com/danpilch/kptimemory/pkg/measure"
)

// tolerance absorbs float rounding in the summary statistics.
const tolerance = 1e-9

// SanityResult holds the outcome of a statistical constraint check.
type SanityResult struct {
	Check   string `json:"check"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// RunSanityChecks validates every result of report against the constraints its
// statistics must satisfy. A result passing all of them yields one passing entry;
// each violated constraint yields a failing entry.
func RunSanityChecks(report measure.Report) []SanityResult {
	var results []SanityResult

	for _, r := range report.Results {
		name := fmt.Sprintf("%s %s", r.Target, r.Kind)
		var failed []SanityResult

		if r.Laps <= 0 {
			failed = append(failed, SanityResult{
				Check:   name + " laps",
				Details: fmt.Sprintf("non-positive lap count: %d", r.Laps),
			})
		}

		if r.Min > r.Mean+slack(r.Mean) || r.Mean > r.Max+slack(r.Max) {
			failed = append(failed, SanityResult{
				Check:   name + " bounds",
				Details: fmt.Sprintf("mean %.6g outside [%.6g, %.6g]", r.Mean, r.Min, r.Max),
			})
		}

		if expected := r.Mean * float64(r.Laps); math.Abs(expected-r.Sum) > slack(r.Sum)+slack(expected) {
			failed = append(failed, SanityResult{
				Check:   name + " sum",
				Details: fmt.Sprintf("sum %.6g does not match %d laps of %.6g", r.Sum, r.Laps, r.Mean),
			})
		}

		if r.P50 > r.P95+slack(r.P95) || r.P95 > r.P99+slack(r.P99) {
			failed = append(failed, SanityResult{
				Check:   name + " quantiles",
				Details: fmt.Sprintf("quantiles out of order: p50=%.6g p95=%.6g p99=%.6g", r.P50, r.P95, r.P99),
			})
		}

		// Clocks never run backwards; memory deltas may be negative.
		if r.Unit == "sec" && r.Min < 0 {
			failed = append(failed, SanityResult{
				Check:   name + " non-negative",
				Details: fmt.Sprintf("negative elapsed time: %.6g", r.Min),
			})
		}

		if len(failed) > 0 {
			results = append(results, failed...)
			continue
		}
		results = append(results, SanityResult{
			Check:   name,
			Passed:  true,
			Details: fmt.Sprintf("%d laps consistent", r.Laps),
		})
	}

	return results
}

func slack(v float64) float64 {
	return math.Max(math.Abs(v)*tolerance, tolerance)
}

// Failed counts the failing sanity results.
func Failed(sanity []SanityResult) int {
	n := 0
	for _, s := range sanity {
		if !s.Passed {
			n++
		}
	}
	return n
}
