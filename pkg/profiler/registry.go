package profiler

import (
	"maps"
	"slices"
)

// Registry maps kernel identifiers to their live handles.
//
// Start, Stop and Destroy on an identifier that is not present are no-ops: the host
// does not guarantee perfectly paired callbacks and a missing key must never fault.
type Registry struct {
	factory Factory
	entries map[uint64]Handle
}

// NewRegistry creates an empty registry constructing handles through f.
func NewRegistry(f Factory) *Registry {
	return &Registry{
		factory: f,
		entries: make(map[uint64]Handle),
	}
}

// Create builds a handle bound to name and stores it under id.
// If id is already present the existing handle is kept and false is returned.
func (r *Registry) Create(name string, id uint64) bool {
	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = r.factory.NewHandle(name)
	return true
}

// Start starts the handle stored under id.
func (r *Registry) Start(id uint64) {
	if h, ok := r.entries[id]; ok {
		h.Start()
	}
}

// Stop stops the handle stored under id.
func (r *Registry) Stop(id uint64) {
	if h, ok := r.entries[id]; ok {
		h.Stop()
	}
}

// Destroy removes the handle stored under id.
func (r *Registry) Destroy(id uint64) {
	delete(r.entries, id)
}

// Has reports whether id is present.
func (r *Registry) Has(id uint64) bool {
	_, ok := r.entries[id]
	return ok
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	return len(r.entries)
}

// IDs returns the live identifiers in ascending order.
func (r *Registry) IDs() []uint64 {
	return slices.Sorted(maps.Keys(r.entries))
}

// StopAll stops every remaining handle in identifier order, empties the registry and
// returns how many handles were stopped.
func (r *Registry) StopAll() int {
	ids := r.IDs()
	for _, id := range ids {
		r.entries[id].Stop()
	}
	clear(r.entries)
	return len(ids)
}
