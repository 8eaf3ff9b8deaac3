package main

import (
	"github.com/spf13/cobra"

	"github.com/danpilch/kptimemory/pkg/baseline"
	"github.com/danpilch/kptimemory/pkg/debug"
	"github.com/danpilch/kptimemory/pkg/output"
)

func newShowCommand() *cobra.Command {
	var (
		format string
		dir    string
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "show [report]",
		Short: "Render a report",
		Long: `Render a JSON report as a table, JSON or tab separated text. Without an
argument the most recent report below --dir is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			} else if path, err = baseline.Latest(dir); err != nil {
				return err
			}

			report, err := baseline.Load(path)
			if err != nil {
				return err
			}
			if err := output.NewFormatter(f, cmd.OutOrStdout()).Render(*report); err != nil {
				return err
			}
			if raw {
				debug.DumpRawResults(cmd.OutOrStdout(), report.Results)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or tsv")
	cmd.Flags().StringVar(&dir, "dir", "timemory-output", "directory searched when no report is given")
	cmd.Flags().BoolVar(&raw, "raw", false, "also dump the unformatted statistics")
	return cmd
}
