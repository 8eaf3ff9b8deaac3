package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danpilch/kptimemory/pkg/baseline"
	"github.com/danpilch/kptimemory/pkg/flamegraph"
	"github.com/danpilch/kptimemory/pkg/measure"
)

func newFlamegraphCommand() *cobra.Command {
	var (
		kindName string
		out      string
		folded   bool
		opts     = flamegraph.DefaultSVGOptions()
	)

	cmd := &cobra.Command{
		Use:   "flamegraph <report>",
		Short: "Render a report as a flame graph",
		Long: `Render the totals of one measurement kind as an SVG flame graph, nesting the
targets on the segments of their names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := measure.ParseKind(kindName)
			if err != nil {
				return err
			}
			report, err := baseline.Load(args[0])
			if err != nil {
				return err
			}

			var stacks bytes.Buffer
			n, err := flamegraph.Collapse(*report, kind, &stacks)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("report %s has no %s results", args[0], kind)
			}
			if folded {
				_, err := cmd.OutOrStdout().Write(stacks.Bytes())
				return err
			}

			_, opts.Unit = flamegraph.Scale(kind.Unit())
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("cannot create %s: %w", out, err)
			}
			defer f.Close()
			if err := flamegraph.GenerateSVG(&stacks, f, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d targets)\n", out, n)
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", string(measure.WallClock), "measurement kind to render")
	cmd.Flags().StringVarP(&out, "output", "o", "flamegraph.svg", "SVG file to write")
	cmd.Flags().BoolVar(&folded, "folded", false, "print the folded stacks instead of writing an SVG")
	cmd.Flags().StringVar(&opts.Title, "title", opts.Title, "flame graph title")
	cmd.Flags().StringVar(&opts.ColorScheme, "colors", opts.ColorScheme, "color scheme: hot, cold or mem")
	return cmd
}
