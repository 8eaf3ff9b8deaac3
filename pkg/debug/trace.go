package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/danpilch/kptimemory/pkg/profiler"
)

// TraceLogger provides step-by-step trace logging of measurement handles.
type TraceLogger struct {
	mu      sync.Mutex
	writer  io.Writer
	enabled bool
}

// NewTraceLogger creates a trace logger writing to the given writer.
// A nil writer traces to stderr.
func NewTraceLogger(w io.Writer) *TraceLogger {
	if w == nil {
		w = defaultTraceWriter()
	}
	return &TraceLogger{
		writer:  w,
		enabled: true,
	}
}

// SetEnabled switches tracing on or off.
func (t *TraceLogger) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Log records a trace entry for a step of the handle bound to target.
func (t *TraceLogger) Log(target, step, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	fmt.Fprintf(t.writer, "[TRACE %s] %s: %s - %s\n",
		time.Now().Format("15:04:05.000"), target, step, detail)
}

// LogLap records the elapsed time between a start and the matching stop.
func (t *TraceLogger) LogLap(target string, lap time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	fmt.Fprintf(t.writer, "[TRACE %s] %s: stop - lap=%v\n",
		time.Now().Format("15:04:05.000"), target, lap)
}

// defaultTraceWriter returns stderr for trace output.
func defaultTraceWriter() io.Writer {
	return os.Stderr
}

// TraceFactory wraps a profiler.Factory and traces the construction, start and
// stop of every handle it builds.
type TraceFactory struct {
	inner profiler.Factory
	trace *TraceLogger
}

// NewTraceFactory wraps inner, writing the trace through t.
func NewTraceFactory(inner profiler.Factory, t *TraceLogger) *TraceFactory {
	return &TraceFactory{inner: inner, trace: t}
}

// NewHandle implements profiler.Factory.
func (f *TraceFactory) NewHandle(name string) profiler.Handle {
	f.trace.Log(name, "construct", "")
	return &tracedHandle{
		name:  name,
		inner: f.inner.NewHandle(name),
		trace: f.trace,
	}
}

type tracedHandle struct {
	name    string
	inner   profiler.Handle
	trace   *TraceLogger
	started time.Time
}

func (h *tracedHandle) Start() {
	h.trace.Log(h.name, "start", "")
	h.started = time.Now()
	h.inner.Start()
}

func (h *tracedHandle) Stop() {
	h.inner.Stop()
	if h.started.IsZero() {
		h.trace.Log(h.name, "stop", "not running")
		return
	}
	h.trace.LogLap(h.name, time.Since(h.started))
	h.started = time.Time{}
}
