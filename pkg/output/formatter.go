// Package output renders measurement reports as console tables, JSON and text.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/danpilch/kptimemory/pkg/measure"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatTSV   Format = "tsv"
)

// ParseFormat resolves a format name, defaulting to the table.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "table", "cout":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "tsv", "text":
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q", name)
	}
}

// Formatter handles output formatting.
type Formatter struct {
	format Format
	writer io.Writer
	title  string
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
		title:  "timemory Connector Report",
	}
}

// SetTitle overrides the heading of the table format.
func (f *Formatter) SetTitle(title string) {
	f.title = title
}

// Render outputs the report in the configured format.
func (f *Formatter) Render(report measure.Report) error {
	switch f.format {
	case FormatJSON:
		return f.renderJSON(report)
	case FormatTSV:
		return f.renderTSV(report)
	default:
		return f.renderTable(report)
	}
}

// renderJSON outputs the report as indented JSON.
func (f *Formatter) renderJSON(report measure.Report) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// renderTable outputs the results as a styled table.
func (f *Formatter) renderTable(report measure.Report) error {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(f.writer, titleStyle.Render(f.title))
	fmt.Fprintln(f.writer, strings.Repeat("═", 60))
	if report.RunID != "" {
		fmt.Fprintln(f.writer, dimStyle.Render(fmt.Sprintf("run %s on %s at %s",
			report.RunID, report.Hostname, report.Timestamp.Format("2006-01-02 15:04:05"))))
	}
	fmt.Fprintln(f.writer)

	if len(report.Results) == 0 {
		fmt.Fprintln(f.writer, dimStyle.Render("No measurements recorded"))
		return nil
	}

	rows := make([][]string, len(report.Results))
	for i, r := range report.Results {
		rows[i] = []string{
			r.Target,
			string(r.Kind),
			fmt.Sprintf("%d", r.Laps),
			FormatValue(r.Unit, r.Sum),
			FormatValue(r.Unit, r.Mean),
			FormatValue(r.Unit, r.Min),
			FormatValue(r.Unit, r.Max),
			FormatValue(r.Unit, r.P95),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("TARGET", "KIND", "LAPS", "TOTAL", "MEAN", "MIN", "MAX", "P95").
		Rows(rows...)

	fmt.Fprintln(f.writer, t)
	fmt.Fprintln(f.writer)
	f.renderSummary(report)
	return nil
}

// renderSummary outputs the summary line.
func (f *Formatter) renderSummary(report measure.Report) {
	targets := make(map[string]struct{})
	var laps int64
	for _, r := range report.Results {
		if _, ok := targets[r.Target]; !ok {
			targets[r.Target] = struct{}{}
			laps += r.Laps
		}
	}
	summaryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	fmt.Fprintf(f.writer, "Summary: %s\n", summaryStyle.Render(
		fmt.Sprintf("%d targets, %d laps", len(targets), laps)))
}

// renderTSV outputs the results as tab-separated values.
func (f *Formatter) renderTSV(report measure.Report) error {
	if _, err := fmt.Fprintln(f.writer,
		"TARGET\tKIND\tUNIT\tLAPS\tSUM\tMEAN\tMIN\tMAX\tP50\tP95\tP99"); err != nil {
		return err
	}
	for _, r := range report.Results {
		if _, err := fmt.Fprintf(f.writer, "%s\t%s\t%s\t%d\t%.9g\t%.9g\t%.9g\t%.9g\t%.9g\t%.9g\t%.9g\n",
			r.Target, r.Kind, r.Unit, r.Laps, r.Sum, r.Mean, r.Min, r.Max,
			r.P50, r.P95, r.P99); err != nil {
			return err
		}
	}
	return nil
}

// FormatValue renders a value in its unit: seconds as a duration, bytes in IEC units.
func FormatValue(unit string, v float64) string {
	switch unit {
	case "bytes":
		sign := ""
		if v < 0 {
			sign = "-"
		}
		return sign + humanize.IBytes(uint64(math.Abs(v)))
	case "sec":
		return time.Duration(v * float64(time.Second)).String()
	default:
		return fmt.Sprintf("%.4g", v)
	}
}
