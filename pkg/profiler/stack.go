package profiler

// RegionStack holds the handles of nested profiling regions, innermost last.
type RegionStack struct {
	factory Factory
	handles []Handle
}

// NewRegionStack creates an empty stack constructing handles through f.
func NewRegionStack(f Factory) *RegionStack {
	return &RegionStack{factory: f}
}

// Push constructs a handle bound to name, pushes it and starts it.
func (s *RegionStack) Push(name string) {
	h := s.factory.NewHandle(name)
	s.handles = append(s.handles, h)
	h.Start()
}

// Pop stops and removes the innermost handle. Popping an empty stack is a no-op.
func (s *RegionStack) Pop() {
	n := len(s.handles)
	if n == 0 {
		return
	}
	s.handles[n-1].Stop()
	s.handles[n-1] = nil
	s.handles = s.handles[:n-1]
}

// Len returns the current nesting depth.
func (s *RegionStack) Len() int {
	return len(s.handles)
}

// StopAll pops every region, innermost first, and returns how many were stopped.
func (s *RegionStack) StopAll() int {
	n := len(s.handles)
	for len(s.handles) > 0 {
		s.Pop()
	}
	return n
}
