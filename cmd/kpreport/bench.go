package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/kptimemory/pkg/benchmark"
	"github.com/danpilch/kptimemory/pkg/config"
	"github.com/danpilch/kptimemory/pkg/debug"
	"github.com/danpilch/kptimemory/pkg/kokkosp"
	"github.com/danpilch/kptimemory/pkg/profiler"
)

func newBenchCommand(logger *logrus.Logger) *cobra.Command {
	var (
		opts       = benchmark.DefaultOptions()
		components string
		pprofAddr  string
		timing     bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the connector callbacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pprofAddr != "" {
				stop, err := debug.StartPprofServer(pprofAddr, logger)
				if err != nil {
					return err
				}
				defer stop()
			}

			settings := config.Default()
			settings.Components = components
			settings.Banner = false
			settings.AutoOutput = false

			var timed *debug.TimedFactory
			connOpts := kokkosp.Options{
				Logger:       logger,
				Stdout:       cmd.OutOrStdout(),
				LoadSettings: func() (*config.Settings, error) { return settings, nil },
			}
			if timing {
				connOpts.Wrap = func(f profiler.Factory) profiler.Factory {
					timed = debug.NewTimedFactory(f)
					return timed
				}
			}
			conn := kokkosp.New(connOpts)
			conn.InitLibrary(0, 0, 0, nil)

			before := benchmark.MeasureOverhead()
			results := benchmark.Run(conn, opts)
			overhead := benchmark.MeasureOverhead().Sub(before)
			conn.FinalizeLibrary()

			benchmark.RenderResults(cmd.OutOrStdout(), results, overhead)
			if timed != nil {
				debug.TimingReport(cmd.OutOrStdout(), timed.Timings())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "measured iterations per callback")
	cmd.Flags().IntVar(&opts.Warmup, "warmup", opts.Warmup, "warmup iterations per callback")
	cmd.Flags().StringVar(&components, "components", "wall_clock", "measurement components to enable")
	cmd.Flags().StringVar(&pprofAddr, "pprof", "", "serve pprof on this address while benchmarking")
	cmd.Flags().BoolVar(&timing, "timing", false, "print the time spent per target")
	return cmd
}
