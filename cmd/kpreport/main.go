// Command kpreport inspects and compares the reports written by the kptimemory
// connector and benchmarks the connector itself.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		logLevel string
		logger   = logrus.New()
	)

	cmd := &cobra.Command{
		Use:          "kpreport",
		Short:        "Inspect timemory connector reports",
		Long:         `kpreport reads the reports written by the kptimemory Kokkos connector.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)
			logger.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.AddCommand(
		newShowCommand(),
		newCompareCommand(),
		newCheckCommand(),
		newComponentsCommand(logger),
		newFlamegraphCommand(),
		newBenchCommand(logger),
	)

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
	return cmd
}
