// Package config loads the connector settings from the environment of the profiled
// application.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/peterbourgon/ff/v3"
	"github.com/sirupsen/logrus"
)

// Compression selects how the JSON report is compressed on disk.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

const (
	defaultComponents = "wall_clock;peak_rss"
	defaultOutputPath = "timemory-output"
	defaultLogLevel   = "warn"

	flagSetName = "kokkos-timemory"
)

var rooflineComponents = []string{"gpu_roofline_flops", "cpu_roofline"}

// Help strings for the settings.
var (
	componentsHelp = "Semicolon separated list of measurement components. " +
		"Defaults to \"" + defaultComponents + "\", or nothing in roofline mode."
	rooflineHelp    = "Enable roofline mode: appends the cpu and gpu roofline components."
	papiEventsHelp  = "Hardware counter names passed through to the measurement engine."
	gotchaModeHelp  = "Function interception level (not supported by this connector)."
	logLevelHelp    = "Connector log level (panic, fatal, error, warn, info, debug, trace)."
	traceHelp       = "Log the construction, start and stop of every measurement handle."
	outputPathHelp  = "Directory the report files are written to."
	timeOutputHelp  = "Write the reports into a time-stamped sub-directory of the output path."
	autoOutputHelp  = "Write the reports when the library is finalized."
	coutOutputHelp  = "Print the report table to stdout."
	textOutputHelp  = "Write a tab separated text report."
	jsonOutputHelp  = "Write a JSON report."
	compressionHelp = "Compression of the JSON report: none, gzip or zstd."
	bannerHelp      = "Print the connector banner on init and finalize."
)

// Settings holds everything the connector reads from the environment.
type Settings struct {
	Components      string
	Roofline        bool
	PapiEvents      string
	GotchaMode      int
	LogLevel        string
	Trace           bool
	OutputPath      string
	TimeOutput      bool
	AutoOutput      bool
	CoutOutput      bool
	TextOutput      bool
	JSONOutput      bool
	JSONCompression string
	Banner          bool

	invalid []invalidSetting
}

// Load parses the settings from the process environment.
func Load() (*Settings, error) {
	return Parse(nil)
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	var s Settings
	newFlagSet(&s)
	return &s
}

// Parse parses the settings from command line style args, falling back to the
// environment for anything args does not set. Flag names map to environment
// variables by upper-casing them and replacing dashes with underscores.
//
// A malformed boolean or integer value keeps its default without affecting the
// other settings. The settings are then returned together with an error naming
// every rejected value. A nil Settings means nothing could be parsed.
func Parse(args []string) (*Settings, error) {
	var s Settings
	fs := newFlagSet(&s)
	if err := ff.Parse(fs, args, ff.WithEnvVars()); err != nil {
		return nil, fmt.Errorf("cannot parse connector settings: %w", err)
	}
	if len(s.invalid) > 0 {
		var result *multierror.Error
		for _, inv := range s.invalid {
			result = multierror.Append(result, inv)
		}
		s.invalid = nil
		return &s, fmt.Errorf("ignored connector settings: %w", result)
	}
	return &s, nil
}

func newFlagSet(s *Settings) *flag.FlagSet {
	fs := flag.NewFlagSet(flagSetName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&s.Components, "kokkos-timemory-components", "", componentsHelp)
	switchVar(fs, s, &s.Roofline, "kokkos-roofline", false, rooflineHelp)
	fs.StringVar(&s.PapiEvents, "papi-events", "", papiEventsHelp)
	fs.Var(&levelValue{name: "kokkos-gotcha-mode", p: &s.GotchaMode, invalid: &s.invalid},
		"kokkos-gotcha-mode", gotchaModeHelp)
	fs.StringVar(&s.LogLevel, "kokkos-timemory-log-level", defaultLogLevel, logLevelHelp)
	switchVar(fs, s, &s.Trace, "kokkos-timemory-trace", false, traceHelp)

	fs.StringVar(&s.OutputPath, "timemory-output-path", defaultOutputPath, outputPathHelp)
	switchVar(fs, s, &s.TimeOutput, "timemory-time-output", false, timeOutputHelp)
	switchVar(fs, s, &s.AutoOutput, "timemory-auto-output", true, autoOutputHelp)
	switchVar(fs, s, &s.CoutOutput, "timemory-cout-output", true, coutOutputHelp)
	switchVar(fs, s, &s.TextOutput, "timemory-text-output", true, textOutputHelp)
	switchVar(fs, s, &s.JSONOutput, "timemory-json-output", true, jsonOutputHelp)
	fs.StringVar(&s.JSONCompression, "timemory-json-compression", string(CompressionNone),
		compressionHelp)
	switchVar(fs, s, &s.Banner, "timemory-banner", true, bannerHelp)
	return fs
}

func switchVar(fs *flag.FlagSet, s *Settings, p *bool, name string, value bool, usage string) {
	*p = value
	fs.Var(&switchValue{name: name, p: p, invalid: &s.invalid}, name, usage)
}

// ComponentList returns the measurement component names to enable, lower-cased.
//
// Without an explicit list the default is wall_clock and peak_rss, or nothing in
// roofline mode. In roofline mode the cpu and gpu roofline components are appended
// unless one of the entries already names a roofline.
func (s *Settings) ComponentList() []string {
	list := s.Components
	if list == "" && !s.Roofline {
		list = defaultComponents
	}
	list = strings.ToLower(list)

	names := Delimit(list)
	if s.Roofline && !strings.Contains(list, "roofline") {
		names = append(names, rooflineComponents...)
	}
	return names
}

// Delimit splits a component list on semicolons and commas, dropping blank entries.
func Delimit(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ';' || r == ','
	})
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	return names
}

// Level returns the configured log level, falling back to warn for unknown names.
func (s *Settings) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

// Compression returns the JSON report compression, falling back to none for unknown
// names.
func (s *Settings) Compression() Compression {
	switch c := Compression(strings.ToLower(s.JSONCompression)); c {
	case CompressionGzip, CompressionZstd:
		return c
	default:
		return CompressionNone
	}
}
