package baseline

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/kptimemory/pkg/measure"
	"github.com/danpilch/kptimemory/pkg/output"
)

// Severity indicates the magnitude of a metric drift.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityRegress  Severity = "regression"
)

// Comparison holds the drift analysis of one target and kind.
type Comparison struct {
	Target       string
	Kind         measure.Kind
	Unit         string
	BaselineMean float64
	CurrentMean  float64
	DeltaPct     float64
	Severity     Severity
}

var (
	blTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	blHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	blDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	blOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	blWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	blErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	blMinor  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

func key(target string, kind measure.Kind) string {
	return target + "|" + string(kind)
}

// Compare matches results by target and kind and calculates the drift of the mean.
// Targets present in only one report are skipped.
func Compare(base, current *measure.Report) []Comparison {
	baseline := make(map[string]measure.Result, len(base.Results))
	for _, r := range base.Results {
		baseline[key(r.Target, r.Kind)] = r
	}

	var comparisons []Comparison
	for _, cur := range current.Results {
		b, ok := baseline[key(cur.Target, cur.Kind)]
		if !ok {
			continue
		}

		var deltaPct float64
		if b.Mean != 0 {
			deltaPct = ((cur.Mean - b.Mean) / math.Abs(b.Mean)) * 100
		} else if cur.Mean != 0 {
			deltaPct = 100
		}

		comparisons = append(comparisons, Comparison{
			Target:       cur.Target,
			Kind:         cur.Kind,
			Unit:         cur.Unit,
			BaselineMean: b.Mean,
			CurrentMean:  cur.Mean,
			DeltaPct:     deltaPct,
			Severity:     classifySeverity(deltaPct),
		})
	}
	return comparisons
}

func classifySeverity(deltaPct float64) Severity {
	absDelta := math.Abs(deltaPct)
	if absDelta < 5 {
		return SeverityNone
	}
	if absDelta < 15 {
		return SeverityMinor
	}
	if absDelta < 30 {
		return SeverityModerate
	}
	if deltaPct > 0 {
		return SeverityRegress
	}
	return SeverityMajor
}

// Regressions counts the comparisons classified as major or regression.
func Regressions(comparisons []Comparison) int {
	n := 0
	for _, c := range comparisons {
		if c.Severity == SeverityRegress || c.Severity == SeverityMajor {
			n++
		}
	}
	return n
}

// RenderComparison outputs a styled comparison table.
func RenderComparison(w io.Writer, base *measure.Report, comparisons []Comparison) {
	fmt.Fprintln(w, blTitle.Render("Baseline Comparison"))
	fmt.Fprintln(w, blDim.Render(strings.Repeat("═", 100)))
	fmt.Fprintf(w, "Comparing against run %s (from %s)\n\n",
		lipgloss.NewStyle().Bold(true).Render(base.RunID),
		blDim.Render(base.Timestamp.Format("2006-01-02 15:04:05")))

	fmt.Fprintf(w, "  %s %s %s %s %s %s\n",
		blHeader.Render("TARGET                            "),
		blHeader.Render("KIND          "),
		blHeader.Render("BASELINE    "),
		blHeader.Render("CURRENT     "),
		blHeader.Render("DELTA    "),
		blHeader.Render("SEVERITY  "))
	fmt.Fprintln(w, "  "+blDim.Render(strings.Repeat("─", 100)))

	for _, c := range comparisons {
		deltaStr := fmt.Sprintf("%+.1f%%", c.DeltaPct)
		var sevStr string
		switch c.Severity {
		case SeverityRegress:
			sevStr = blErr.Render("REGRESSION")
		case SeverityMajor:
			sevStr = blErr.Render("MAJOR")
		case SeverityModerate:
			sevStr = blWarn.Render("moderate")
		case SeverityMinor:
			sevStr = blMinor.Render("minor")
		default:
			sevStr = blOK.Render("none")
		}

		fmt.Fprintf(w, "  %-35s %-15s %-14s %-14s %-10s %s\n",
			c.Target, c.Kind,
			output.FormatValue(c.Unit, c.BaselineMean),
			output.FormatValue(c.Unit, c.CurrentMean),
			deltaStr, sevStr)
	}

	fmt.Fprintln(w)
	score := DriftScore(comparisons)
	scoreStyle := blOK
	switch ScoreLabel(score) {
	case "Drifting":
		scoreStyle = blWarn
	case "Unstable":
		scoreStyle = blErr
	}
	fmt.Fprintf(w, "  Drift score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100 %s", score, ScoreLabel(score))))
	if n := Regressions(comparisons); n > 0 {
		fmt.Fprintf(w, "  %s\n", blErr.Render(fmt.Sprintf("%d potential regressions detected.", n)))
	} else {
		fmt.Fprintf(w, "  %s\n", blOK.Render("No significant regressions detected."))
	}
}
