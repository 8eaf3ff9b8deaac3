package profiler

import (
	"sync"

	"github.com/danpilch/kptimemory/pkg/idgen"
)

// Context is the callback state of one host thread: its identifier counters, the
// kernel registry, the region stack and the section table.
//
// The host only ever drives a Context from its own thread. The mutex exists so that
// finalization, which may run on another thread, can sweep it safely.
type Context struct {
	mu       sync.Mutex
	kernels  *idgen.Generator
	registry *Registry
	regions  *RegionStack
	sections *SectionTable
}

// Stats summarizes the live entries of a Context.
type Stats struct {
	Kernels  int
	Regions  int
	Sections int
}

// FinalizeStats counts what Finalize had to clean up.
type FinalizeStats struct {
	StoppedKernels  int
	StoppedRegions  int
	DroppedSections int
}

// NewContext creates an empty thread context constructing handles through f.
func NewContext(f Factory) *Context {
	return &Context{
		kernels:  idgen.New(),
		registry: NewRegistry(f),
		regions:  NewRegionStack(f),
		sections: NewSectionTable(f, idgen.New()),
	}
}

// BeginKernel generates an identifier, creates a handle bound to target under it and
// starts it.
func (c *Context) BeginKernel(target string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.kernels.Next()
	c.registry.Create(target, id)
	c.registry.Start(id)
	return id
}

// EndKernel stops and destroys the handle for id.
func (c *Context) EndKernel(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Stop(id)
	c.registry.Destroy(id)
}

// PushRegion starts a nested region.
func (c *Context) PushRegion(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions.Push(name)
}

// PopRegion stops the innermost region.
func (c *Context) PopRegion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions.Pop()
}

// CreateSection creates an unstarted section and returns its identifier.
func (c *Context) CreateSection(name string) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sections.Create(name)
}

// StartSection starts section id.
func (c *Context) StartSection(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections.Start(id)
}

// StopSection stops section id.
func (c *Context) StopSection(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections.Stop(id)
}

// DestroySection removes section id.
func (c *Context) DestroySection(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections.Destroy(id)
}

// Stats returns the number of live entries in each container.
func (c *Context) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Kernels:  c.registry.Len(),
		Regions:  c.regions.Len(),
		Sections: c.sections.Len(),
	}
}

// Finalize stops every kernel whose end callback never arrived, unwinds open regions
// and drops all sections.
func (c *Context) Finalize() FinalizeStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FinalizeStats{
		StoppedKernels:  c.registry.StopAll(),
		StoppedRegions:  c.regions.StopAll(),
		DroppedSections: c.sections.Clear(),
	}
}

// Add accumulates o into s.
func (s *FinalizeStats) Add(o FinalizeStats) {
	s.StoppedKernels += o.StoppedKernels
	s.StoppedRegions += o.StoppedRegions
	s.DroppedSections += o.DroppedSections
}
