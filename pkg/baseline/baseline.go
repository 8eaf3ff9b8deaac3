// Package baseline loads written measurement reports and detects drift between runs.
package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/danpilch/kptimemory/pkg/measure"
	"github.com/danpilch/kptimemory/pkg/output"
)

// ErrNoReport is returned by Latest when a directory holds no report.
var ErrNoReport = errors.New("no report found")

// Load reads a JSON report written by the connector, plain or compressed.
func Load(path string) (*measure.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read report %q: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress report %q: %w", path, err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress report %q: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	var report measure.Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("cannot parse report %q: %w", path, err)
	}
	return &report, nil
}

// Latest returns the most recently written report below dir, including the
// time-stamped sub-directories.
func Latest(dir string) (string, error) {
	var (
		latest  string
		latestT int64
	)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isReport(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if t := info.ModTime().UnixNano(); latest == "" || t > latestT {
			latest, latestT = path, t
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("cannot search %q for reports: %w", dir, err)
	}
	if latest == "" {
		return "", fmt.Errorf("%w in %q", ErrNoReport, dir)
	}
	return latest, nil
}

func isReport(name string) bool {
	return strings.HasPrefix(name, output.ReportBaseName+".json")
}
