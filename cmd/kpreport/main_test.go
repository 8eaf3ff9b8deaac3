package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/kptimemory/pkg/measure"
	"github.com/danpilch/kptimemory/pkg/output"
)

func writeReport(t *testing.T, dir, runID string, mean float64) string {
	t.Helper()
	report := measure.Report{
		RunID:     runID,
		Timestamp: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Kinds:     []measure.Kind{measure.WallClock},
		Results: []measure.Result{{
			Target: "kokkos/dev0/foo", Kind: measure.WallClock, Unit: "sec",
			Laps: 1, Sum: mean, Mean: mean, Min: mean, Max: mean,
		}},
	}
	written, err := output.WriteAll(report, output.Options{Dir: dir, JSON: true})
	require.NoError(t, err)
	return written[0]
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShow(t *testing.T) {
	path := writeReport(t, t.TempDir(), "run-a", 0.25)

	out, err := run(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "kokkos/dev0/foo")
	assert.Contains(t, out, "250ms")

	out, err = run(t, "show", "--format", "tsv", "--raw", path)
	require.NoError(t, err)
	assert.Contains(t, out, "TARGET\tKIND")
	assert.Contains(t, out, "Raw Results Dump")

	_, err = run(t, "show", "--format", "xml", path)
	assert.ErrorContains(t, err, "unknown output format")
}

func TestShowLatest(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "only-run", 1)

	out, err := run(t, "show", "--dir", dir, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id": "only-run"`)

	_, err = run(t, "show", "--dir", t.TempDir())
	assert.ErrorContains(t, err, "no report found")
}

func TestCompare(t *testing.T) {
	base := writeReport(t, t.TempDir(), "base", 1)
	cur := writeReport(t, t.TempDir(), "cur", 2)

	out, err := run(t, "compare", base, cur)
	require.NoError(t, err)
	assert.Contains(t, out, "REGRESSION")

	_, err = run(t, "compare", "--fail-on-regression", base, cur)
	assert.ErrorContains(t, err, "1 regressions")

	_, err = run(t, "compare", base, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "cannot read report")
}

func TestComponents(t *testing.T) {
	t.Setenv("KOKKOS_TIMEMORY_COMPONENTS", "cpu_clock;papi_vector")
	t.Setenv("KOKKOS_ROOFLINE", "")

	out, err := run(t, "components")
	require.NoError(t, err)
	assert.Contains(t, out, "otel_histogram")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "Not available: papi_vector")
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "--iterations", "5", "--warmup", "1", "--timing")
	require.NoError(t, err)
	assert.Contains(t, out, "Connector Self-Benchmark")
	assert.Contains(t, out, "parallel_scan")
	assert.Contains(t, out, "Target Timing Report")
	assert.Contains(t, out, "kokkos/dev0/benchmark")
}

func TestFlamegraph(t *testing.T) {
	path := writeReport(t, t.TempDir(), "run", 0.5)

	out, err := run(t, "flamegraph", "--folded", path)
	require.NoError(t, err)
	assert.Equal(t, "kokkos;dev0;foo 500000\n", out)

	svg := filepath.Join(t.TempDir(), "out.svg")
	out, err = run(t, "flamegraph", "-o", svg, path)
	require.NoError(t, err)
	assert.Contains(t, out, "(1 targets)")
	assert.FileExists(t, svg)

	_, err = run(t, "flamegraph", "--kind", "peak_rss", path)
	assert.ErrorContains(t, err, "has no peak_rss results")
}

func TestCheck(t *testing.T) {
	a := writeReport(t, t.TempDir(), "aaaa-1", 1)
	b := writeReport(t, t.TempDir(), "bbbb-2", 1.02)
	c := writeReport(t, t.TempDir(), "cccc-3", 4)

	out, err := run(t, "check", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, "All 2 sanity checks passed.")

	out, err = run(t, "check", "--format", "json", a, c)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "conflict"`)

	_, err = run(t, "check", "--strict", a, b, c)
	assert.ErrorContains(t, err, "0 sanity checks failed, 1 conflicting metrics")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "components")
	assert.Error(t, err)
}
