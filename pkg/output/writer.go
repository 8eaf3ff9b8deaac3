package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/danpilch/kptimemory/pkg/config"
	"github.com/danpilch/kptimemory/pkg/measure"
)

// ReportBaseName is the file name, without extension, of the written reports.
const ReportBaseName = "kokkos"

// Options selects which outputs WriteAll produces.
type Options struct {
	Dir         string
	TimeOutput  bool
	Text        bool
	JSON        bool
	Cout        bool
	Compression config.Compression
	// Stdout receives the cout table. Defaults to os.Stdout.
	Stdout io.Writer
	// Now stamps the time-stamped sub-directory. Defaults to time.Now.
	Now func() time.Time
}

// OptionsFromSettings maps connector settings to output options.
func OptionsFromSettings(s *config.Settings) Options {
	return Options{
		Dir:         s.OutputPath,
		TimeOutput:  s.TimeOutput,
		Text:        s.TextOutput,
		JSON:        s.JSONOutput,
		Cout:        s.CoutOutput,
		Compression: s.Compression(),
	}
}

// JSONFileName returns the report file name for a compression.
func JSONFileName(c config.Compression) string {
	switch c {
	case config.CompressionGzip:
		return ReportBaseName + ".json.gz"
	case config.CompressionZstd:
		return ReportBaseName + ".json.zst"
	default:
		return ReportBaseName + ".json"
	}
}

// WriteAll writes every enabled output for report and returns the paths of the
// files written. A failing output does not prevent the others; all failures are
// returned together.
func WriteAll(report measure.Report, opts Options) ([]string, error) {
	var (
		written []string
		result  *multierror.Error
	)

	if opts.Cout {
		stdout := opts.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		if err := NewFormatter(FormatTable, stdout).Render(report); err != nil {
			result = multierror.Append(result, fmt.Errorf("cannot print report: %w", err))
		}
	}

	if !opts.Text && !opts.JSON {
		return written, result.ErrorOrNil()
	}

	dir := opts.Dir
	if opts.TimeOutput {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		dir = filepath.Join(dir, now().Format("2006-01-02_15.04.05"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result = multierror.Append(result, fmt.Errorf("cannot create output directory: %w", err))
		return written, result.ErrorOrNil()
	}

	if opts.Text {
		path := filepath.Join(dir, ReportBaseName+".txt")
		if err := writeFile(path, func(w io.Writer) error {
			return NewFormatter(FormatTSV, w).Render(report)
		}); err != nil {
			result = multierror.Append(result, err)
		} else {
			written = append(written, path)
		}
	}

	if opts.JSON {
		path := filepath.Join(dir, JSONFileName(opts.Compression))
		if err := writeFile(path, func(w io.Writer) error {
			return writeJSON(w, report, opts.Compression)
		}); err != nil {
			result = multierror.Append(result, err)
		} else {
			written = append(written, path)
		}
	}

	return written, result.ErrorOrNil()
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cannot close %s: %w", path, cerr)
		}
	}()
	if err := render(f); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, report measure.Report, c config.Compression) error {
	switch c {
	case config.CompressionGzip:
		gz := gzip.NewWriter(w)
		if err := NewFormatter(FormatJSON, gz).Render(report); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	case config.CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := NewFormatter(FormatJSON, enc).Render(report); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	default:
		return NewFormatter(FormatJSON, w).Render(report)
	}
}
