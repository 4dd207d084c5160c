// Package main provides a command-line tool for inspecting and extracting UIX
// containers and XPR texture packages.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/goopsie/uixtool/pkg/logging"
)

const version = "0.1.0"

var (
	logLevel string
	jsonLog  bool
	logger   hclog.Logger
	rootCmd  *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "uixtool",
		Short:         "Inspect and extract UIX containers and XPR packages",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logLevel
			if level == "" {
				level = logging.GetLogLevel()
			}
			var opts []logging.Option
			if cmd.Flags().Changed("json-log") {
				opts = append(opts, logging.WithJSON(jsonLog))
			}
			logger = logging.NewLogger("uixtool", level, os.Stderr, opts...)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error); defaults to $"+logging.EnvLogLevel)
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON; defaults to $"+logging.EnvJSONLog)

	rootCmd.AddCommand(newInfoCmd(), newStringsCmd(), newExtractCmd(), newPackCmd(), newUnpackCmd(), newUpdateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
