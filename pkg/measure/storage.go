package measure

import (
	"fmt"
	"sort"
	"sync"

	"github.com/DataDog/sketches-go/ddsketch"
)

// relativeAccuracy bounds the quantile error of every Stat.
const relativeAccuracy = 0.01

// Result is the accumulated statistics of one kind for one target.
type Result struct {
	Target string  `json:"target"`
	Kind   Kind    `json:"kind"`
	Unit   string  `json:"unit"`
	Laps   int64   `json:"laps"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

type stat struct {
	sketch *ddsketch.DDSketchWithExactSummaryStatistics
}

func newStat() (*stat, error) {
	s, err := ddsketch.NewDefaultDDSketchWithExactSummaryStatistics(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return &stat{sketch: s}, nil
}

func (s *stat) result(target string, kind Kind) Result {
	r := Result{
		Target: target,
		Kind:   kind,
		Unit:   kind.Unit(),
		Laps:   int64(s.sketch.GetCount()),
		Sum:    s.sketch.GetSum(),
	}
	if r.Laps == 0 {
		return r
	}
	r.Mean = r.Sum / float64(r.Laps)
	r.Min, _ = s.sketch.GetMinValue()
	r.Max, _ = s.sketch.GetMaxValue()
	if qs, err := s.sketch.GetValuesAtQuantiles([]float64{0.50, 0.95, 0.99}); err == nil {
		r.P50, r.P95, r.P99 = qs[0], qs[1], qs[2]
	}
	return r
}

// Storage accumulates laps per target name and kind. It is safe for concurrent use.
type Storage struct {
	mu      sync.Mutex
	targets map[string]map[Kind]*stat
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{
		targets: make(map[string]map[Kind]*stat),
	}
}

// Record adds one lap value for target and kind.
func (s *Storage) Record(target string, kind Kind, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kinds, ok := s.targets[target]
	if !ok {
		kinds = make(map[Kind]*stat)
		s.targets[target] = kinds
	}
	st, ok := kinds[kind]
	if !ok {
		var err error
		if st, err = newStat(); err != nil {
			return fmt.Errorf("cannot create statistics for %q: %w", target, err)
		}
		kinds[kind] = st
	}
	if err := st.sketch.Add(value); err != nil {
		return fmt.Errorf("cannot record %s value %v for %q: %w", kind, value, target, err)
	}
	return nil
}

// Len returns the number of distinct targets recorded.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

// Results returns a snapshot sorted by target, then kind.
func (s *Storage) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]Result, 0, len(s.targets))
	for target, kinds := range s.targets {
		for kind, st := range kinds {
			results = append(results, st.result(target, kind))
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Target != results[j].Target {
			return results[i].Target < results[j].Target
		}
		return results[i].Kind < results[j].Kind
	})
	return results
}

// Reset drops everything recorded so far.
func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.targets)
}
