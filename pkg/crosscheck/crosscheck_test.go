package crosscheck

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/kptimemory/pkg/measure"
)

func TestCrossCheck(t *testing.T) {
	v := NewValidator()
	tests := map[string]struct {
		values    []float64
		consensus float64
		status    ValidationStatus
	}{
		"none":     {values: nil, consensus: 0, status: StatusValid},
		"single":   {values: []float64{3}, consensus: 3, status: StatusValid},
		"agree":    {values: []float64{1.0, 1.02, 0.99}, consensus: 1.0, status: StatusValid},
		"pair":     {values: []float64{1.0, 1.15}, consensus: 1.075, status: StatusValid},
		"drifting": {values: []float64{1.0, 1.0, 1.2}, consensus: 1.0, status: StatusSuspect},
		"conflict": {values: []float64{1.0, 1.0, 2.0}, consensus: 1.0, status: StatusConflict},
		"zero":     {values: []float64{0, 0, 1}, consensus: 0, status: StatusConflict},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			sources := make([]Source, len(test.values))
			for i, val := range test.values {
				sources[i] = Source{Name: "r", Value: val}
			}
			res := v.CrossCheck("m", "sec", sources)
			assert.InDelta(t, test.consensus, res.Consensus, 1e-9)
			assert.Equal(t, test.status, res.Status)
		})
	}
}

func result(target string, mean float64) measure.Result {
	return measure.Result{
		Target: target, Kind: measure.WallClock, Unit: "sec",
		Laps: 2, Sum: 2 * mean, Mean: mean, Min: mean, Max: mean,
		P50: mean, P95: mean, P99: mean,
	}
}

func TestCrossCheckReports(t *testing.T) {
	reports := []*measure.Report{
		{RunID: "aaaa-1", Results: []measure.Result{result("k", 1), result("only-first", 1)}},
		{RunID: "bbbb-2", Results: []measure.Result{result("k", 1.01)}},
		{Results: []measure.Result{result("k", 3)}},
	}

	validations := NewValidator().CrossCheckReports(reports)
	require.Len(t, validations, 1)
	v := validations[0]
	assert.Equal(t, "k wall_clock", v.Metric)
	assert.Equal(t, "sec", v.Unit)
	assert.Equal(t, StatusConflict, v.Status)
	require.Len(t, v.Sources, 3)
	assert.Equal(t, "run3", v.Sources[2].Name)
	assert.InDelta(t, 1.01, v.Consensus, 1e-9)
}

func TestRunSanityChecks(t *testing.T) {
	good := result("good", 0.5)

	badBounds := result("bounds", 0.5)
	badBounds.Max = 0.1

	badSum := result("sum", 0.5)
	badSum.Sum = 7

	badQuantiles := result("quantiles", 0.5)
	badQuantiles.P50 = 0.9

	negative := result("negative", 0.5)
	negative.Min = -1

	noLaps := result("laps", 0)
	noLaps.Laps = 0

	memory := result("memory", -4096)
	memory.Unit = "bytes"
	memory.Kind = measure.PeakRSS

	sanity := RunSanityChecks(measure.Report{Results: []measure.Result{
		good, badBounds, badSum, badQuantiles, negative, noLaps, memory,
	}})

	checks := make(map[string]bool)
	for _, s := range sanity {
		checks[s.Check] = s.Passed
	}
	assert.Equal(t, map[string]bool{
		"good wall_clock":                  true,
		"bounds wall_clock bounds":         false,
		"sum wall_clock sum":               false,
		"quantiles wall_clock quantiles":   false,
		"negative wall_clock non-negative": false,
		"laps wall_clock laps":             false,
		"memory peak_rss":                  true,
	}, checks)
	assert.Equal(t, 5, Failed(sanity))
}

func TestRender(t *testing.T) {
	validations := []ValidationResult{
		NewValidator().CrossCheck("k wall_clock", "sec", []Source{{Name: "3b1c-x", Value: 1}, {Name: "9f00-y", Value: 2}}),
	}
	sanity := RunSanityChecks(measure.Report{Results: []measure.Result{result("k", 1)}})

	var buf bytes.Buffer
	Render(&buf, validations, sanity)
	out := buf.String()
	assert.Contains(t, out, "CONFLICT")
	assert.Contains(t, out, "3b1c=1s")
	assert.Contains(t, out, "All 1 sanity checks passed.")

	buf.Reset()
	require.NoError(t, RenderJSON(&buf, validations, sanity))
	var decoded struct {
		Validations []ValidationResult `json:"validations"`
		Sanity      []SanityResult     `json:"sanity"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Validations, 1)
	assert.True(t, decoded.Sanity[0].Passed)
}
