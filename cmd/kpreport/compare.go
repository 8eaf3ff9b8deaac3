package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danpilch/kptimemory/pkg/baseline"
)

func newCompareCommand() *cobra.Command {
	var failOnRegression bool

	cmd := &cobra.Command{
		Use:   "compare <baseline> <current>",
		Short: "Compare two reports",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseline.Load(args[0])
			if err != nil {
				return err
			}
			current, err := baseline.Load(args[1])
			if err != nil {
				return err
			}

			comparisons := baseline.Compare(base, current)
			baseline.RenderComparison(cmd.OutOrStdout(), base, comparisons)

			if n := baseline.Regressions(comparisons); n > 0 && failOnRegression {
				return fmt.Errorf("%d regressions against %s", n, args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false,
		"exit with an error when a regression is detected")
	return cmd
}
