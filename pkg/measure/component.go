package measure

import (
	"context"
	"time"

	"github.com/prometheus/procfs"
	"go.opentelemetry.io/otel/metric"
)

// Component measures one quantity between Start and Stop.
type Component interface {
	Kind() Kind
	Start()
	// Stop returns the value accumulated since the matching Start.
	Stop() float64
}

type wallClock struct {
	start time.Time
}

func (c *wallClock) Kind() Kind { return WallClock }

func (c *wallClock) Start() { c.start = time.Now() }

func (c *wallClock) Stop() float64 { return time.Since(c.start).Seconds() }

// rusageClock covers the cpu, user and sys clocks.
type rusageClock struct {
	kind  Kind
	start time.Duration
}

func (c *rusageClock) Kind() Kind { return c.kind }

func (c *rusageClock) Start() { c.start = c.sample() }

func (c *rusageClock) Stop() float64 { return (c.sample() - c.start).Seconds() }

func (c *rusageClock) sample() time.Duration {
	u, err := readRusage()
	if err != nil {
		return 0
	}
	switch c.kind {
	case UserClock:
		return u.user
	case SysClock:
		return u.sys
	default:
		return u.user + u.sys
	}
}

type peakRSS struct {
	start int64
}

func (c *peakRSS) Kind() Kind { return PeakRSS }

func (c *peakRSS) Start() { c.start = c.sample() }

func (c *peakRSS) Stop() float64 { return float64(c.sample() - c.start) }

func (c *peakRSS) sample() int64 {
	u, err := readRusage()
	if err != nil {
		return 0
	}
	return u.maxRSS
}

type pageRSS struct {
	start int64
}

func (c *pageRSS) Kind() Kind { return PageRSS }

func (c *pageRSS) Start() { c.start = currentRSS() }

func (c *pageRSS) Stop() float64 { return float64(currentRSS() - c.start) }

// currentRSS returns the resident set size of this process in bytes, or 0 where
// procfs is not available.
func currentRSS() int64 {
	p, err := procfs.Self()
	if err != nil {
		return 0
	}
	stat, err := p.Stat()
	if err != nil {
		return 0
	}
	return int64(stat.ResidentMemory())
}

type otelHistogram struct {
	histogram metric.Float64Histogram
	attrs     metric.MeasurementOption
	start     time.Time
}

func (c *otelHistogram) Kind() Kind { return OtelHistogram }

func (c *otelHistogram) Start() { c.start = time.Now() }

func (c *otelHistogram) Stop() float64 {
	d := time.Since(c.start).Seconds()
	c.histogram.Record(context.Background(), d, c.attrs)
	return d
}
