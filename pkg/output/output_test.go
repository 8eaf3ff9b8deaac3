package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/kptimemory/pkg/config"
	"github.com/danpilch/kptimemory/pkg/measure"
)

func sampleReport() measure.Report {
	return measure.Report{
		RunID:     "3b1c8c8e-0000-4000-8000-000000000000",
		Timestamp: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
		Hostname:  "node01",
		Kinds:     []measure.Kind{measure.WallClock, measure.PeakRSS},
		Results: []measure.Result{
			{Target: "kokkos/dev0/foo", Kind: measure.PeakRSS, Unit: "bytes", Laps: 2, Sum: 2048, Mean: 1024},
			{Target: "kokkos/dev0/foo", Kind: measure.WallClock, Unit: "sec", Laps: 2, Sum: 0.5, Mean: 0.25},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]struct {
		name     string
		expected Format
		wantErr  bool
	}{
		"empty":   {name: "", expected: FormatTable},
		"cout":    {name: "cout", expected: FormatTable},
		"json":    {name: "JSON", expected: FormatJSON},
		"text":    {name: "text", expected: FormatTSV},
		"tsv":     {name: "tsv", expected: FormatTSV},
		"unknown": {name: "xml", wantErr: true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f, err := ParseFormat(test.name)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, f)
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable, &buf).Render(sampleReport()))
	out := buf.String()
	assert.Contains(t, out, "kokkos/dev0/foo")
	assert.Contains(t, out, "wall_clock")
	assert.Contains(t, out, "250ms")
	assert.Contains(t, out, "1.0 KiB")
	assert.Contains(t, out, "1 targets, 2 laps")
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatTable, &buf)
	f.SetTitle("Empty Run")
	require.NoError(t, f.Render(measure.Report{}))
	assert.Contains(t, buf.String(), "Empty Run")
	assert.Contains(t, buf.String(), "No measurements recorded")
}

func TestRenderTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTSV, &buf).Render(sampleReport()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "TARGET\tKIND"))
	assert.True(t, strings.HasPrefix(lines[2], "kokkos/dev0/foo\twall_clock\tsec\t2\t"))
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON, &buf).Render(sampleReport()))

	var decoded measure.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport().Results, decoded.Results)
	assert.Equal(t, "node01", decoded.Hostname)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1.5s", FormatValue("sec", 1.5))
	assert.Equal(t, "2.0 KiB", FormatValue("bytes", 2048))
	assert.Equal(t, "-4.0 KiB", FormatValue("bytes", -4096))
	assert.Equal(t, "3", FormatValue("", 3))
}

func TestJSONFileName(t *testing.T) {
	assert.Equal(t, "kokkos.json", JSONFileName(config.CompressionNone))
	assert.Equal(t, "kokkos.json.gz", JSONFileName(config.CompressionGzip))
	assert.Equal(t, "kokkos.json.zst", JSONFileName(config.CompressionZstd))
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer

	written, err := WriteAll(sampleReport(), Options{
		Dir:    dir,
		Text:   true,
		JSON:   true,
		Cout:   true,
		Stdout: &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "kokkos.txt"),
		filepath.Join(dir, "kokkos.json"),
	}, written)
	assert.Contains(t, stdout.String(), "kokkos/dev0/foo")

	data, err := os.ReadFile(filepath.Join(dir, "kokkos.json"))
	require.NoError(t, err)
	var decoded measure.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Results, 2)
}

func TestWriteAllTimeOutput(t *testing.T) {
	dir := t.TempDir()
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	written, err := WriteAll(sampleReport(), Options{
		Dir:         dir,
		TimeOutput:  true,
		JSON:        true,
		Compression: config.CompressionGzip,
		Now:         func() time.Time { return stamp },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "2026-01-02_03.04.05", "kokkos.json.gz")}, written)
}

func TestWriteAllNothingEnabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	written, err := WriteAll(sampleReport(), Options{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.NoDirExists(t, dir)
}

func TestWriteAllBadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := WriteAll(sampleReport(), Options{Dir: file, Text: true, JSON: true})
	assert.ErrorContains(t, err, "cannot create output directory")
}

func TestOptionsFromSettings(t *testing.T) {
	s := &config.Settings{
		OutputPath:      "out",
		TextOutput:      true,
		CoutOutput:      true,
		JSONCompression: "zstd",
	}
	opts := OptionsFromSettings(s)
	assert.Equal(t, "out", opts.Dir)
	assert.True(t, opts.Text)
	assert.False(t, opts.JSON)
	assert.True(t, opts.Cout)
	assert.Equal(t, config.CompressionZstd, opts.Compression)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "▁▁▁", Sparkline([]float64{2, 2, 2}))
	assert.Equal(t, "▁▄█", Sparkline([]float64{0, 5, 10}))
}

func TestDistribution(t *testing.T) {
	assert.Nil(t, Distribution(nil, 4))
	assert.Equal(t, []float64{3, 0}, Distribution([]float64{1, 1, 1}, 2))
	assert.Equal(t, []float64{2, 1, 0, 1}, Distribution([]float64{0, 1, 2, 8}, 4))
}
