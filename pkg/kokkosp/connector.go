// Package kokkosp implements the Kokkos profiling callbacks on top of the
// measurement engine.
//
// Every callback operates on the state of the host thread that invokes it. The
// Connector keeps one profiler.Context per thread, so threads never observe each
// other's kernels, regions or sections. Go callers driving a Connector directly
// must lock their goroutine to its OS thread for as long as identifiers are live.
package kokkosp

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/kptimemory/pkg/config"
	"github.com/danpilch/kptimemory/pkg/debug"
	"github.com/danpilch/kptimemory/pkg/measure"
	"github.com/danpilch/kptimemory/pkg/output"
	"github.com/danpilch/kptimemory/pkg/profiler"
)

const bannerRule = "#---------------------------------------------------------------------------#"

// DeviceInfo describes a device reported by the host at initialization.
type DeviceInfo struct {
	DeviceID uint64
}

// Options configures a Connector.
type Options struct {
	Logger *logrus.Logger
	// Stdout receives the banners and the console report. Defaults to os.Stdout.
	Stdout io.Writer
	// TraceWriter receives the handle trace when tracing is enabled. Defaults to os.Stderr.
	TraceWriter io.Writer
	// ThreadID identifies the calling host thread. Defaults to the OS thread id.
	ThreadID func() int
	// Engine performs the measurements. Defaults to a new engine using Logger.
	Engine *measure.Engine
	// LoadSettings is called by InitLibrary. Defaults to config.Load.
	LoadSettings func() (*config.Settings, error)
	// Wrap, when set, decorates the handle factory chosen at initialization.
	Wrap func(profiler.Factory) profiler.Factory
}

// Stats summarizes the live state of all thread contexts.
type Stats struct {
	Threads int
	profiler.Stats
}

// Connector routes the profiling callbacks of the host to per-thread contexts.
// It is safe for concurrent use.
type Connector struct {
	logger       *logrus.Logger
	ownLogger    bool
	stdout       io.Writer
	traceWriter  io.Writer
	threadID     func() int
	engine       *measure.Engine
	loadSettings func() (*config.Settings, error)
	wrap         func(profiler.Factory) profiler.Factory

	factoryMu sync.RWMutex
	factory   profiler.Factory

	// mu is held for reading by every callback and for writing while contexts
	// are created or finalized.
	mu       sync.RWMutex
	settings *config.Settings
	devices  []DeviceInfo
	contexts map[int]*profiler.Context
}

// New creates a connector. Callbacks may arrive before InitLibrary; they are
// measured with whatever the engine has configured.
func New(opts Options) *Connector {
	c := &Connector{
		logger:       opts.Logger,
		stdout:       opts.Stdout,
		traceWriter:  opts.TraceWriter,
		threadID:     opts.ThreadID,
		engine:       opts.Engine,
		loadSettings: opts.LoadSettings,
		wrap:         opts.Wrap,
		contexts:     make(map[int]*profiler.Context),
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetLevel(logrus.WarnLevel)
		c.ownLogger = true
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.threadID == nil {
		c.threadID = currentThreadID
	}
	if c.engine == nil {
		c.engine = measure.NewEngine(measure.Options{Logger: c.logger})
	}
	if c.loadSettings == nil {
		c.loadSettings = config.Load
	}
	c.factory = c.engine
	return c
}

// Engine returns the measurement engine.
func (c *Connector) Engine() *measure.Engine {
	return c.engine
}

// Devices returns the devices reported at initialization.
func (c *Connector) Devices() []DeviceInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.devices)
}

// Settings returns the settings loaded at initialization, or nil before it.
func (c *Connector) Settings() *config.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Stats returns the live entries across all thread contexts.
func (c *Connector) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := Stats{Threads: len(c.contexts)}
	for _, ctx := range c.contexts {
		s := ctx.Stats()
		stats.Kernels += s.Kernels
		stats.Regions += s.Regions
		stats.Sections += s.Sections
	}
	return stats
}

// newHandle constructs a handle through the factory selected at initialization,
// so contexts created before InitLibrary use it for their next handle.
func (c *Connector) newHandle(name string) profiler.Handle {
	c.factoryMu.RLock()
	f := c.factory
	c.factoryMu.RUnlock()
	return f.NewHandle(name)
}

// withContext runs fn on the calling thread's context, creating it on first use.
// Finalization waits for fn to return.
func (c *Connector) withContext(fn func(*profiler.Context)) {
	tid := c.threadID()
	for !c.tryContext(tid, fn) {
		c.mu.Lock()
		if _, ok := c.contexts[tid]; !ok {
			c.contexts[tid] = profiler.NewContext(profiler.FactoryFunc(c.newHandle))
			c.logger.WithField("thread", tid).Trace("Created thread context")
		}
		c.mu.Unlock()
	}
}

func (c *Connector) tryContext(tid int, fn func(*profiler.Context)) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctx, ok := c.contexts[tid]
	if ok {
		fn(ctx)
	}
	return ok
}

// InitLibrary loads the settings, prints the banner and configures the engine
// with the requested measurement components.
func (c *Connector) InitLibrary(loadSeq int, interfaceVer uint64, devInfoCount uint32, devices []DeviceInfo) {
	settings, err := c.loadSettings()
	switch {
	case settings == nil:
		c.logger.WithError(err).Warn("Cannot load connector settings, using defaults")
		settings = config.Default()
	case err != nil:
		c.logger.WithError(err).Warn("Some connector settings were ignored")
	}
	if c.ownLogger {
		c.logger.SetLevel(settings.Level())
	}

	if settings.Banner {
		fmt.Fprintln(c.stdout, bannerRule)
		fmt.Fprintf(c.stdout, "# KokkosP: timemory Connector (sequence is %d, version: %d)\n",
			loadSeq, interfaceVer)
		fmt.Fprintf(c.stdout, "%s\n\n", bannerRule)
	}

	kinds := c.engine.Configure(settings.ComponentList())

	c.engine.SetMetadata("kokkos.load_sequence", strconv.Itoa(loadSeq))
	c.engine.SetMetadata("kokkos.interface_version", strconv.FormatUint(interfaceVer, 10))
	c.engine.SetMetadata("kokkos.device_count", strconv.FormatUint(uint64(devInfoCount), 10))
	if len(devices) > 0 {
		ids := make([]string, len(devices))
		for i, d := range devices {
			ids[i] = strconv.FormatUint(d.DeviceID, 10)
		}
		c.engine.SetMetadata("kokkos.device_ids", strings.Join(ids, ","))
	}
	if settings.PapiEvents != "" {
		c.engine.SetMetadata("papi_events", settings.PapiEvents)
	}

	if settings.GotchaMode != 0 {
		c.logger.WithField("mode", settings.GotchaMode).
			Warn("Function interception is not supported, ignoring KOKKOS_GOTCHA_MODE")
	}

	var factory profiler.Factory = c.engine
	if settings.Trace {
		factory = debug.NewTraceFactory(factory, debug.NewTraceLogger(c.traceWriter))
	}
	if c.wrap != nil {
		factory = c.wrap(factory)
	}

	c.factoryMu.Lock()
	c.factory = factory
	c.factoryMu.Unlock()

	c.mu.Lock()
	c.settings = settings
	c.devices = slices.Clone(devices)
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"sequence":   loadSeq,
		"version":    interfaceVer,
		"devices":    devInfoCount,
		"components": kinds,
	}).Debug("Initialized timemory connector")
}

// FinalizeLibrary stops every handle still running on any thread, drops all
// regions and sections and writes the reports.
//
// It is safe to call before InitLibrary or more than once. Reports are only
// written by the first call following an InitLibrary. Callbacks already in
// progress complete before the sweep; later callbacks start new contexts.
func (c *Connector) FinalizeLibrary() {
	c.mu.Lock()
	settings := c.settings
	contexts := c.contexts
	c.settings = nil
	c.contexts = make(map[int]*profiler.Context)

	if settings != nil && settings.Banner {
		fmt.Fprintf(c.stdout, "\n%s\n", bannerRule)
		fmt.Fprintln(c.stdout, "KokkosP: Finalization of timemory Connector. Complete.")
		fmt.Fprintf(c.stdout, "%s\n\n", bannerRule)
	}

	var stats profiler.FinalizeStats
	for _, ctx := range contexts {
		stats.Add(ctx.Finalize())
	}
	c.mu.Unlock()
	c.logger.WithFields(logrus.Fields{
		"threads":  len(contexts),
		"kernels":  stats.StoppedKernels,
		"regions":  stats.StoppedRegions,
		"sections": stats.DroppedSections,
	}).Debug("Finalized thread contexts")

	if settings == nil || !settings.AutoOutput {
		return
	}

	opts := output.OptionsFromSettings(settings)
	opts.Stdout = c.stdout
	written, err := output.WriteAll(c.engine.Report(), opts)
	if err != nil {
		c.logger.WithError(err).Warn("Cannot write timemory reports")
	}
	for _, path := range written {
		c.logger.WithField("path", path).Info("Wrote timemory report")
	}
}

// BeginParallelFor starts measuring a parallel_for kernel and stores its
// identifier in kernID. A nil kernID is tolerated.
func (c *Connector) BeginParallelFor(name string, devID uint32, kernID *uint64) {
	c.beginKernel(name, devID, kernID)
}

// EndParallelFor stops the parallel_for kernel kernID.
func (c *Connector) EndParallelFor(kernID uint64) {
	c.endKernel(kernID)
}

// BeginParallelReduce starts measuring a parallel_reduce kernel.
func (c *Connector) BeginParallelReduce(name string, devID uint32, kernID *uint64) {
	c.beginKernel(name, devID, kernID)
}

// EndParallelReduce stops the parallel_reduce kernel kernID.
func (c *Connector) EndParallelReduce(kernID uint64) {
	c.endKernel(kernID)
}

// BeginParallelScan starts measuring a parallel_scan kernel.
func (c *Connector) BeginParallelScan(name string, devID uint32, kernID *uint64) {
	c.beginKernel(name, devID, kernID)
}

// EndParallelScan stops the parallel_scan kernel kernID.
func (c *Connector) EndParallelScan(kernID uint64) {
	c.endKernel(kernID)
}

func (c *Connector) beginKernel(name string, devID uint32, kernID *uint64) {
	var id uint64
	c.withContext(func(ctx *profiler.Context) {
		id = ctx.BeginKernel(profiler.KernelName(devID, name))
	})
	if kernID != nil {
		*kernID = id
	}
}

func (c *Connector) endKernel(kernID uint64) {
	c.withContext(func(ctx *profiler.Context) {
		ctx.EndKernel(kernID)
	})
}

// PushProfileRegion starts a region named name, nested in the current one.
func (c *Connector) PushProfileRegion(name string) {
	c.withContext(func(ctx *profiler.Context) {
		ctx.PushRegion(name)
	})
}

// PopProfileRegion stops the innermost region.
func (c *Connector) PopProfileRegion() {
	c.withContext(func(ctx *profiler.Context) {
		ctx.PopRegion()
	})
}

// CreateProfileSection creates an unstarted section and stores its identifier
// in secID. A nil secID is tolerated.
func (c *Connector) CreateProfileSection(name string, secID *uint32) {
	var id uint32
	c.withContext(func(ctx *profiler.Context) {
		id = ctx.CreateSection(name)
	})
	if secID != nil {
		*secID = id
	}
}

// DestroyProfileSection removes section secID.
func (c *Connector) DestroyProfileSection(secID uint32) {
	c.withContext(func(ctx *profiler.Context) {
		ctx.DestroySection(secID)
	})
}

// StartProfileSection starts section secID.
func (c *Connector) StartProfileSection(secID uint32) {
	c.withContext(func(ctx *profiler.Context) {
		ctx.StartSection(secID)
	})
}

// StopProfileSection stops section secID.
func (c *Connector) StopProfileSection(secID uint32) {
	c.withContext(func(ctx *profiler.Context) {
		ctx.StopSection(secID)
	})
}
