// Package flamegraph renders the targets of a report as a flame graph, nesting
// them on the path segments of their names (kokkos/dev0/foo becomes
// kokkos;dev0;foo).
package flamegraph

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/danpilch/kptimemory/pkg/measure"
)

// Scale returns the multiplier turning values of unit into integer frame weights
// and the unit the weights are expressed in.
func Scale(unit string) (float64, string) {
	switch unit {
	case "sec":
		return 1e6, "µs"
	case "bytes":
		return 1, "bytes"
	default:
		return 1, unit
	}
}

// Collapse converts the results of one kind to folded stack format.
// Output: "kokkos;dev0;foo weight\n", sorted by stack. Results with a zero or
// negative total are skipped.
func Collapse(report measure.Report, kind measure.Kind, w io.Writer) (int, error) {
	stacks := make(map[string]int64)
	for _, r := range report.Results {
		if r.Kind != kind {
			continue
		}
		scale, _ := Scale(r.Unit)
		weight := int64(math.Round(r.Sum * scale))
		if weight <= 0 {
			continue
		}
		stacks[stackOf(r.Target)] += weight
	}
	return len(stacks), writeCollapsed(w, stacks)
}

// stackOf splits a target name into frames. Region names are arbitrary text, so
// separators already in them are escaped.
func stackOf(target string) string {
	target = strings.ReplaceAll(target, ";", ":")
	target = strings.ReplaceAll(target, " ", "_")
	parts := strings.FieldsFunc(target, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "[unnamed]"
	}
	return strings.Join(parts, ";")
}

func writeCollapsed(w io.Writer, stacks map[string]int64) error {
	keys := make([]string, 0, len(stacks))
	for k := range stacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s %d\n", k, stacks[k]); err != nil {
			return err
		}
	}
	return nil
}
