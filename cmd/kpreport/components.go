package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/kptimemory/pkg/config"
	"github.com/danpilch/kptimemory/pkg/measure"
)

func newComponentsCommand(logger *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the measurement components",
		Long: `List every measurement component the connector implements and mark the ones
the current environment (KOKKOS_TIMEMORY_COMPONENTS, KOKKOS_ROOFLINE) enables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if settings == nil {
				return err
			}
			if err != nil {
				logger.WithError(err).Warn("Some settings were ignored")
			}
			enabled, unknown := measure.Enumerate(settings.ComponentList())

			headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
			cellStyle := lipgloss.NewStyle().Padding(0, 1)

			var rows [][]string
			for _, k := range measure.AllKinds() {
				mark := ""
				if slices.Contains(enabled, k) {
					mark = "yes"
				}
				rows = append(rows, []string{string(k), k.Unit(), mark, k.Description()})
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				}).
				Headers("COMPONENT", "UNIT", "ENABLED", "DESCRIPTION").
				Rows(rows...)
			fmt.Fprintln(cmd.OutOrStdout(), t)

			if len(unknown) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Not available: %s\n", strings.Join(unknown, ", "))
			}
			return nil
		},
	}
}
