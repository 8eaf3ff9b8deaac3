package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/kptimemory/pkg/measure"
)

// DumpRawResults outputs every result with its unformatted statistics.
func DumpRawResults(w io.Writer, results []measure.Result) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Raw Results Dump"))
	fmt.Fprintln(w, dim.Render(strings.Repeat("═", 95)))
	fmt.Fprintf(w, "  %s %s %s %s %s\n",
		header.Render("TARGET                  "),
		header.Render("KIND          "),
		header.Render("SUM           "),
		header.Render("MIN           "),
		header.Render("MAX       "))
	fmt.Fprintln(w, "  "+dim.Render(strings.Repeat("─", 95)))

	for _, r := range results {
		fmt.Fprintf(w, "  %-25s %-15s %-15.6g %-15.6g %-12.6g %s\n",
			r.Target, r.Kind, r.Sum, r.Min, r.Max, dim.Render(r.Unit))
	}
}
