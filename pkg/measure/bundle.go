package measure

// Bundle is the handle bound to one target name: one component per enabled kind,
// started and stopped together. A Bundle may be started and stopped repeatedly;
// every Stop records one lap per component.
type Bundle struct {
	name       string
	engine     *Engine
	components []Component
	running    bool
	laps       int
}

// Name returns the target name the bundle records under.
func (b *Bundle) Name() string {
	return b.name
}

// Running reports whether the bundle is between Start and Stop.
func (b *Bundle) Running() bool {
	return b.running
}

// Laps returns how many start/stop cycles completed.
func (b *Bundle) Laps() int {
	return b.laps
}

// Start starts every component. Starting a running bundle is a no-op.
func (b *Bundle) Start() {
	if b.running {
		return
	}
	b.running = true
	for _, c := range b.components {
		c.Start()
	}
}

// Stop stops every component in reverse order and records the lap.
// Stopping a bundle that is not running is a no-op.
func (b *Bundle) Stop() {
	if !b.running {
		return
	}
	b.running = false
	b.laps++
	for i := len(b.components) - 1; i >= 0; i-- {
		c := b.components[i]
		b.engine.record(b.name, c.Kind(), c.Stop())
	}
}
