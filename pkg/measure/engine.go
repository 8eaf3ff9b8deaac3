package measure

import (
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/danpilch/kptimemory/pkg/profiler"
)

const (
	instrumentationName = "github.com/danpilch/kptimemory"
	histogramName       = "kokkos.target.duration"
	targetAttribute     = "kokkos.target"
)

// Report is a snapshot of everything the engine recorded.
type Report struct {
	RunID     string            `json:"run_id"`
	Timestamp time.Time         `json:"timestamp"`
	Hostname  string            `json:"hostname"`
	Kinds     []Kind            `json:"kinds"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Results   []Result          `json:"results"`
}

// Options configures an Engine.
type Options struct {
	Logger *logrus.Logger
	// MeterProvider backs the otel_histogram component. Defaults to the global provider.
	MeterProvider metric.MeterProvider
}

// Engine creates measurement bundles and owns the storage their laps go to.
// It is safe for concurrent use.
type Engine struct {
	logger  *logrus.Logger
	storage *Storage
	meter   metric.Meter

	mu        sync.RWMutex
	runID     uuid.UUID
	kinds     []Kind
	histogram metric.Float64Histogram
	metadata  map[string]string
	warned    map[string]bool
}

// NewEngine creates an engine with no kinds enabled.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	return &Engine{
		logger:   logger,
		storage:  NewStorage(),
		meter:    mp.Meter(instrumentationName),
		runID:    uuid.New(),
		metadata: make(map[string]string),
		warned:   make(map[string]bool),
	}
}

// Configure enables the components named in names and returns the resulting kinds.
// Names no component implements are logged once and skipped.
func (e *Engine) Configure(names []string) []Kind {
	kinds, unknown := Enumerate(names)

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, name := range unknown {
		if e.warned[name] {
			continue
		}
		e.warned[name] = true
		e.logger.WithField("component", name).Warn("Measurement component not available, skipping")
	}

	if slices.Contains(kinds, OtelHistogram) && e.histogram == nil {
		h, err := e.meter.Float64Histogram(histogramName,
			metric.WithDescription("Elapsed time of Kokkos kernels, regions and sections"),
			metric.WithUnit("s"))
		if err != nil {
			e.logger.WithError(err).Warn("Cannot create OpenTelemetry histogram")
			kinds = slices.DeleteFunc(kinds, func(k Kind) bool { return k == OtelHistogram })
		} else {
			e.histogram = h
		}
	}

	e.kinds = kinds
	e.logger.WithField("components", kinds).Debug("Configured measurement components")
	return slices.Clone(kinds)
}

// Kinds returns the enabled kinds.
func (e *Engine) Kinds() []Kind {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.kinds)
}

// SetMetadata attaches a key/value pair to future reports.
func (e *Engine) SetMetadata(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metadata[key] = value
}

// NewBundle builds an unstarted bundle bound to name with one component per enabled kind.
func (e *Engine) NewBundle(name string) *Bundle {
	e.mu.RLock()
	kinds := e.kinds
	histogram := e.histogram
	e.mu.RUnlock()

	b := &Bundle{
		name:       name,
		engine:     e,
		components: make([]Component, 0, len(kinds)),
	}
	for _, k := range kinds {
		switch k {
		case WallClock:
			b.components = append(b.components, &wallClock{})
		case CPUClock, UserClock, SysClock:
			b.components = append(b.components, &rusageClock{kind: k})
		case PeakRSS:
			b.components = append(b.components, &peakRSS{})
		case PageRSS:
			b.components = append(b.components, &pageRSS{})
		case OtelHistogram:
			b.components = append(b.components, &otelHistogram{
				histogram: histogram,
				attrs:     metric.WithAttributes(attribute.String(targetAttribute, name)),
			})
		}
	}
	return b
}

// NewHandle implements profiler.Factory.
func (e *Engine) NewHandle(name string) profiler.Handle {
	return e.NewBundle(name)
}

func (e *Engine) record(target string, kind Kind, value float64) {
	if err := e.storage.Record(target, kind, value); err != nil {
		e.logger.WithError(err).Debug("Dropped measurement")
	}
}

// Storage returns the storage laps are recorded into.
func (e *Engine) Storage() *Storage {
	return e.storage
}

// Report returns a snapshot of everything recorded so far.
func (e *Engine) Report() Report {
	hostname, _ := os.Hostname()
	metadata := hostMetadata()

	e.mu.RLock()
	defer e.mu.RUnlock()

	for k, v := range e.metadata {
		metadata[k] = v
	}
	return Report{
		RunID:     e.runID.String(),
		Timestamp: time.Now(),
		Hostname:  hostname,
		Kinds:     slices.Clone(e.kinds),
		Metadata:  metadata,
		Results:   e.storage.Results(),
	}
}

// Reset drops recorded data and starts a new run.
func (e *Engine) Reset() {
	e.storage.Reset()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runID = uuid.New()
}
