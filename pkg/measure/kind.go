// Package measure is the instrumentation engine behind the connector: measurement
// components, the bundles that group them per target and the process-wide storage
// their laps accumulate into.
package measure

import (
	"errors"
	"strings"
)

// Kind identifies one type of measurement component.
type Kind string

const (
	WallClock     Kind = "wall_clock"
	CPUClock      Kind = "cpu_clock"
	UserClock     Kind = "user_clock"
	SysClock      Kind = "sys_clock"
	PeakRSS       Kind = "peak_rss"
	PageRSS       Kind = "page_rss"
	OtelHistogram Kind = "otel_histogram"
)

// ErrUnknownKind is returned by ParseKind for names no component implements.
var ErrUnknownKind = errors.New("unknown measurement kind")

var kindAliases = map[string]Kind{
	"wall_clock":     WallClock,
	"wall":           WallClock,
	"real_clock":     WallClock,
	"cpu_clock":      CPUClock,
	"cpu":            CPUClock,
	"user_clock":     UserClock,
	"user":           UserClock,
	"sys_clock":      SysClock,
	"sys":            SysClock,
	"system_clock":   SysClock,
	"peak_rss":       PeakRSS,
	"page_rss":       PageRSS,
	"rss":            PageRSS,
	"otel_histogram": OtelHistogram,
	"otel":           OtelHistogram,
}

// AllKinds returns every kind this engine implements.
func AllKinds() []Kind {
	return []Kind{WallClock, CPUClock, UserClock, SysClock, PeakRSS, PageRSS, OtelHistogram}
}

// Unit returns the unit the kind's values are recorded in.
func (k Kind) Unit() string {
	switch k {
	case PeakRSS, PageRSS:
		return "bytes"
	default:
		return "sec"
	}
}

// Description returns a short human readable description.
func (k Kind) Description() string {
	switch k {
	case WallClock:
		return "Elapsed real time"
	case CPUClock:
		return "Process user + system CPU time"
	case UserClock:
		return "Process user CPU time"
	case SysClock:
		return "Process system CPU time"
	case PeakRSS:
		return "Growth of the peak resident set size"
	case PageRSS:
		return "Change of the current resident set size"
	case OtelHistogram:
		return "Elapsed real time exported to an OpenTelemetry histogram"
	}
	return ""
}

// ParseKind resolves a component name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	return "", ErrUnknownKind
}

// Enumerate resolves names to kinds in order, dropping duplicates and blanks.
// Names no component implements are returned separately.
func Enumerate(names []string) (kinds []Kind, unknown []string) {
	seen := make(map[Kind]bool)
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, unknown
}
