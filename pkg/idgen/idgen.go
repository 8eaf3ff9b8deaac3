// Package idgen provides per-context sequential identifiers for kernel and section callbacks.
package idgen

// Generator produces identifiers starting from 0, strictly increasing on every call.
//
// A Generator is not safe for concurrent use. Each host thread context owns its own
// instance, so identifiers are only unique within that context.
type Generator struct {
	next uint64
}

// New returns a generator whose first identifier is 0.
func New() *Generator {
	return &Generator{}
}

// NewFrom returns a generator whose first identifier is start.
func NewFrom(start uint64) *Generator {
	return &Generator{next: start}
}

// Next returns the next identifier.
func (g *Generator) Next() uint64 {
	id := g.next
	g.next++
	return id
}

// Next32 returns the next identifier truncated to the 32-bit width used for sections.
func (g *Generator) Next32() uint32 {
	return uint32(g.Next())
}

// Peek returns the identifier the next call to Next will produce.
func (g *Generator) Peek() uint64 {
	return g.next
}
