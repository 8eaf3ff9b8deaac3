package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danpilch/kptimemory/pkg/baseline"
	"github.com/danpilch/kptimemory/pkg/crosscheck"
	"github.com/danpilch/kptimemory/pkg/measure"
	"github.com/danpilch/kptimemory/pkg/output"
)

func newCheckCommand() *cobra.Command {
	var (
		format string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check <report>...",
		Short: "Validate reports and cross-check repeated runs",
		Long: `Check the statistics of every report for consistency. With several reports the
mean of each target is also compared across the runs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			reports := make([]*measure.Report, 0, len(args))
			var sanity []crosscheck.SanityResult
			for _, path := range args {
				r, err := baseline.Load(path)
				if err != nil {
					return err
				}
				reports = append(reports, r)
				sanity = append(sanity, crosscheck.RunSanityChecks(*r)...)
			}
			validations := crosscheck.NewValidator().CrossCheckReports(reports)

			if f == output.FormatJSON {
				if err := crosscheck.RenderJSON(cmd.OutOrStdout(), validations, sanity); err != nil {
					return err
				}
			} else {
				crosscheck.Render(cmd.OutOrStdout(), validations, sanity)
			}

			if !strict {
				return nil
			}
			conflicts := 0
			for _, v := range validations {
				if v.Status == crosscheck.StatusConflict {
					conflicts++
				}
			}
			if failed := crosscheck.Failed(sanity); failed > 0 || conflicts > 0 {
				return fmt.Errorf("%d sanity checks failed, %d conflicting metrics", failed, conflicts)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error on failed checks or conflicts")
	return cmd
}
