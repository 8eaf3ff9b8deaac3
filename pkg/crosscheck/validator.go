// Package crosscheck validates reports against the constraints their statistics
// must satisfy and cross-checks the same measurement across several runs.
package crosscheck

import (
	"fmt"
	"math"
	"sort"

	"github.com/danpilch/kptimemory/pkg/measure"
)

// ValidationStatus indicates the confidence level of a cross-checked metric.
type ValidationStatus string

const (
	StatusValid    ValidationStatus = "valid"
	StatusSuspect  ValidationStatus = "suspect"
	StatusConflict ValidationStatus = "conflict"
)

// Source represents a single reading of a metric, one per run.
type Source struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ValidationResult holds the cross-check outcome for a metric.
type ValidationResult struct {
	Metric       string           `json:"metric"`
	Unit         string           `json:"unit"`
	Sources      []Source         `json:"sources"`
	Consensus    float64          `json:"consensus"`
	MaxDeviation float64          `json:"max_deviation"`
	Status       ValidationStatus `json:"status"`
}

// Validator cross-checks metrics from multiple sources.
type Validator struct {
	SuspectThreshold  float64 // deviation % to mark suspect (default 10%)
	ConflictThreshold float64 // deviation % to mark conflict (default 25%)
}

// NewValidator creates a validator with default thresholds.
func NewValidator() *Validator {
	return &Validator{
		SuspectThreshold:  10.0,
		ConflictThreshold: 25.0,
	}
}

// CrossCheck validates a metric by comparing values from multiple sources.
// Returns a ValidationResult with consensus (median) and deviation analysis.
func (v *Validator) CrossCheck(metric, unit string, sources []Source) ValidationResult {
	result := ValidationResult{
		Metric:  metric,
		Unit:    unit,
		Sources: sources,
		Status:  StatusValid,
	}

	if len(sources) == 0 {
		return result
	}

	if len(sources) == 1 {
		result.Consensus = sources[0].Value
		return result
	}

	values := make([]float64, len(sources))
	for i, s := range sources {
		values[i] = s.Value
	}
	sort.Float64s(values)

	if len(values)%2 == 0 {
		result.Consensus = (values[len(values)/2-1] + values[len(values)/2]) / 2
	} else {
		result.Consensus = values[len(values)/2]
	}

	for _, val := range values {
		if result.Consensus == 0 {
			if val != 0 {
				result.MaxDeviation = 100.0
			}
			continue
		}
		dev := math.Abs(val-result.Consensus) / math.Abs(result.Consensus) * 100
		result.MaxDeviation = max(result.MaxDeviation, dev)
	}

	if result.MaxDeviation >= v.ConflictThreshold {
		result.Status = StatusConflict
	} else if result.MaxDeviation >= v.SuspectThreshold {
		result.Status = StatusSuspect
	}

	return result
}

// CrossCheckReports compares the mean of every target and kind present in at
// least two reports. Each report contributes one source named by its run id.
func (v *Validator) CrossCheckReports(reports []*measure.Report) []ValidationResult {
	type entry struct {
		unit    string
		sources []Source
	}
	metrics := make(map[string]*entry)
	for i, r := range reports {
		name := r.RunID
		if name == "" {
			name = fmt.Sprintf("run%d", i+1)
		}
		for _, res := range r.Results {
			key := res.Target + " " + string(res.Kind)
			e, ok := metrics[key]
			if !ok {
				e = &entry{unit: res.Unit}
				metrics[key] = e
			}
			e.sources = append(e.sources, Source{Name: name, Value: res.Mean})
		}
	}

	keys := make([]string, 0, len(metrics))
	for k, e := range metrics {
		if len(e.sources) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	validations := make([]ValidationResult, 0, len(keys))
	for _, k := range keys {
		validations = append(validations, v.CrossCheck(k, metrics[k].unit, metrics[k].sources))
	}
	return validations
}
