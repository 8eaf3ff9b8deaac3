package measure

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/danpilch/kptimemory/pkg/profiler"
)

type recordingHistogram struct {
	noop.Float64Histogram
	mu      sync.Mutex
	targets []string
}

func (h *recordingHistogram) Record(_ context.Context, _ float64, opts ...metric.RecordOption) {
	cfg := metric.NewRecordConfig(opts)
	set := cfg.Attributes()
	v, _ := set.Value(attribute.Key(targetAttribute))
	h.mu.Lock()
	defer h.mu.Unlock()
	h.targets = append(h.targets, v.AsString())
}

type recordingMeter struct {
	noop.Meter
	histogram *recordingHistogram
}

func (m recordingMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return m.histogram, nil
}

type recordingProvider struct {
	noop.MeterProvider
	meter recordingMeter
}

func (p recordingProvider) Meter(string, ...metric.MeterOption) metric.Meter {
	return p.meter
}

func newTestEngine() *Engine {
	return NewEngine(Options{MeterProvider: noop.NewMeterProvider()})
}

func TestEnumerate(t *testing.T) {
	tests := map[string]struct {
		names   []string
		kinds   []Kind
		unknown []string
	}{
		"default": {
			names: []string{"wall_clock", "peak_rss"},
			kinds: []Kind{WallClock, PeakRSS},
		},
		"case insensitive and aliases": {
			names: []string{"WALL_CLOCK", " Cpu ", "Page_RSS"},
			kinds: []Kind{WallClock, CPUClock, PageRSS},
		},
		"duplicates and blanks": {
			names: []string{"", "wall", "wall_clock", " "},
			kinds: []Kind{WallClock},
		},
		"unknown": {
			names:   []string{"gpu_roofline_flops", "wall_clock", "PAPI_vector"},
			kinds:   []Kind{WallClock},
			unknown: []string{"gpu_roofline_flops", "papi_vector"},
		},
		"empty": {},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			kinds, unknown := Enumerate(test.names)
			assert.Equal(t, test.kinds, kinds)
			assert.Equal(t, test.unknown, unknown)
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("SYS")
	require.NoError(t, err)
	assert.Equal(t, SysClock, k)

	_, err = ParseKind("cuda_event")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindUnits(t *testing.T) {
	for _, k := range AllKinds() {
		assert.NotEmpty(t, k.Description(), k)
		switch k {
		case PeakRSS, PageRSS:
			assert.Equal(t, "bytes", k.Unit())
		default:
			assert.Equal(t, "sec", k.Unit())
		}
	}
}

func TestBundleStartStop(t *testing.T) {
	e := newTestEngine()
	e.Configure([]string{"wall_clock", "cpu_clock", "peak_rss", "page_rss"})

	b := e.NewBundle("kokkos/dev0/foo")
	assert.False(t, b.Running())
	b.Start()
	assert.True(t, b.Running())
	time.Sleep(2 * time.Millisecond)
	b.Stop()
	assert.False(t, b.Running())
	assert.Equal(t, 1, b.Laps())

	results := e.Storage().Results()
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, "kokkos/dev0/foo", r.Target)
		assert.Equal(t, int64(1), r.Laps)
		assert.Equal(t, r.Kind.Unit(), r.Unit)
	}
	wall := results[slicesIndex(results, WallClock)]
	assert.GreaterOrEqual(t, wall.Sum, 0.002)
}

func slicesIndex(results []Result, k Kind) int {
	for i, r := range results {
		if r.Kind == k {
			return i
		}
	}
	return -1
}

func TestBundleStopWithoutStartIsNoop(t *testing.T) {
	e := newTestEngine()
	e.Configure([]string{"wall_clock"})

	b := e.NewBundle("idle")
	b.Stop()
	assert.Equal(t, 0, b.Laps())
	assert.Equal(t, 0, e.Storage().Len())
}

func TestBundleRepeatedLaps(t *testing.T) {
	e := newTestEngine()
	e.Configure([]string{"wall_clock"})

	b := e.NewBundle("kokkos/section0/s")
	for i := 0; i < 3; i++ {
		b.Start()
		b.Start()
		b.Stop()
	}

	results := e.Storage().Results()
	require.Len(t, results, 1)
	assert.Equal(t, int64(3), results[0].Laps)
	assert.LessOrEqual(t, results[0].Min, results[0].Max)
}

func TestEngineImplementsFactory(t *testing.T) {
	e := newTestEngine()
	e.Configure([]string{"wall_clock"})

	var f profiler.Factory = e
	ctx := profiler.NewContext(f)
	id := ctx.BeginKernel(profiler.KernelName(1, "axpy"))
	ctx.EndKernel(id)

	results := e.Report().Results
	require.Len(t, results, 1)
	assert.Equal(t, "kokkos/dev1/axpy", results[0].Target)
}

func TestEngineConfigureUnknown(t *testing.T) {
	e := newTestEngine()
	kinds := e.Configure([]string{"cpu_roofline", "user_clock"})
	assert.Equal(t, []Kind{UserClock}, kinds)
	assert.Equal(t, []Kind{UserClock}, e.Kinds())
	assert.True(t, e.warned["cpu_roofline"])
}

func TestEngineNoKinds(t *testing.T) {
	e := newTestEngine()
	b := e.NewBundle("empty")
	b.Start()
	b.Stop()
	assert.Equal(t, 1, b.Laps())
	assert.Empty(t, e.Report().Results)
}

func TestEngineOtelHistogram(t *testing.T) {
	h := &recordingHistogram{}
	e := NewEngine(Options{MeterProvider: recordingProvider{meter: recordingMeter{histogram: h}}})
	e.Configure([]string{"otel"})

	b := e.NewBundle("kokkos/dev0/bar")
	b.Start()
	b.Stop()

	assert.Equal(t, []string{"kokkos/dev0/bar"}, h.targets)
	results := e.Report().Results
	require.Len(t, results, 1)
	assert.Equal(t, OtelHistogram, results[0].Kind)
}

func TestEngineReport(t *testing.T) {
	e := newTestEngine()
	e.Configure([]string{"wall_clock"})
	e.SetMetadata("papi_events", "PAPI_TOT_CYC")

	before := e.Report()
	assert.NotEmpty(t, before.RunID)
	assert.Equal(t, "PAPI_TOT_CYC", before.Metadata["papi_events"])
	assert.Equal(t, runtime.GOOS, before.Metadata["host.os"])
	assert.NotEmpty(t, before.Metadata["host.cpus"])
	assert.Equal(t, []Kind{WallClock}, before.Kinds)

	b := e.NewBundle("x")
	b.Start()
	b.Stop()
	assert.Len(t, e.Report().Results, 1)

	e.Reset()
	after := e.Report()
	assert.Empty(t, after.Results)
	assert.NotEqual(t, before.RunID, after.RunID)
}

func TestStorageResultsSorted(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Record("b", WallClock, 1))
	require.NoError(t, s.Record("a", WallClock, 2))
	require.NoError(t, s.Record("a", CPUClock, 3))
	require.NoError(t, s.Record("a", CPUClock, 5))

	results := s.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Target)
	assert.Equal(t, CPUClock, results[0].Kind)
	assert.Equal(t, int64(2), results[0].Laps)
	assert.InDelta(t, 8.0, results[0].Sum, 1e-9)
	assert.InDelta(t, 4.0, results[0].Mean, 1e-9)
	assert.InDelta(t, 3.0, results[0].Min, 1e-9)
	assert.InDelta(t, 5.0, results[0].Max, 1e-9)
	assert.Equal(t, WallClock, results[1].Kind)
	assert.Equal(t, "b", results[2].Target)
}

func TestStorageQuantiles(t *testing.T) {
	s := NewStorage()
	for i := 1; i <= 100; i++ {
		require.NoError(t, s.Record("q", WallClock, float64(i)))
	}
	r := s.Results()[0]
	assert.InEpsilon(t, 50.0, r.P50, 0.05)
	assert.InEpsilon(t, 95.0, r.P95, 0.05)
	assert.InEpsilon(t, 99.0, r.P99, 0.05)
}

func TestStorageNegativeDelta(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Record("rss", PageRSS, -4096))
	require.NoError(t, s.Record("rss", PageRSS, 8192))
	r := s.Results()[0]
	assert.InDelta(t, -4096.0, r.Min, 1e-9)
	assert.InDelta(t, 4096.0, r.Sum, 1e-9)
}

func TestStorageConcurrentRecord(t *testing.T) {
	s := NewStorage()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				_ = s.Record("shared", WallClock, 0.001)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), s.Results()[0].Laps)
	s.Reset()
	assert.Equal(t, 0, s.Len())
}
