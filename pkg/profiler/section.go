package profiler

import (
	"maps"
	"slices"

	"github.com/danpilch/kptimemory/pkg/idgen"
)

type section struct {
	name   string
	handle Handle
}

// SectionTable holds explicitly created sections which may be started and stopped
// any number of times between Create and Destroy.
type SectionTable struct {
	factory  Factory
	ids      *idgen.Generator
	sections map[uint32]section
}

// NewSectionTable creates an empty table. Section identifiers are drawn from ids.
func NewSectionTable(f Factory, ids *idgen.Generator) *SectionTable {
	return &SectionTable{
		factory:  f,
		ids:      ids,
		sections: make(map[uint32]section),
	}
}

// Create generates a fresh identifier and stores an unstarted handle bound to the
// namespaced section name. The identifier is returned to the caller.
// If the identifier is still taken after the generator wraps, the existing section
// is kept and its identifier is returned.
func (t *SectionTable) Create(name string) uint32 {
	id := t.ids.Next32()
	if _, ok := t.sections[id]; !ok {
		t.sections[id] = section{
			name:   name,
			handle: t.factory.NewHandle(SectionName(id, name)),
		}
	}
	return id
}

// Start starts the section id.
func (t *SectionTable) Start(id uint32) {
	if s, ok := t.sections[id]; ok {
		s.handle.Start()
	}
}

// Stop stops the section id.
func (t *SectionTable) Stop(id uint32) {
	if s, ok := t.sections[id]; ok {
		s.handle.Stop()
	}
}

// Destroy removes the section id.
func (t *SectionTable) Destroy(id uint32) {
	delete(t.sections, id)
}

// Name returns the host supplied name of section id.
func (t *SectionTable) Name(id uint32) (string, bool) {
	s, ok := t.sections[id]
	return s.name, ok
}

// Has reports whether section id exists.
func (t *SectionTable) Has(id uint32) bool {
	_, ok := t.sections[id]
	return ok
}

// Len returns the number of live sections.
func (t *SectionTable) Len() int {
	return len(t.sections)
}

// Clear stops and drops every section and returns how many were removed.
func (t *SectionTable) Clear() int {
	ids := slices.Sorted(maps.Keys(t.sections))
	for _, id := range ids {
		t.sections[id].handle.Stop()
	}
	clear(t.sections)
	return len(ids)
}
