// Package cli implements bgpsim's command tree: a thin Cobra wrapper over
// internal/scenario's replay surface, restructured from kbgp/cmd/main.go's
// bare demo harness in the idiom of
// malbeclabs-doublezero/controlplane/telemetry/internal/data/cli/root.go.
package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// ExitCode is the process exit status Run returns.
type ExitCode int

const (
	exitCodeSuccess ExitCode = 0
	exitCodeError   ExitCode = 1
)

// Run builds and executes the root command, returning the process exit
// code.
func Run() ExitCode {
	rootCmd := &cobra.Command{
		Use:   "bgpsim",
		Short: "Replay BGP/IGP convergence scenarios and inspect the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")

	rootCmd.AddCommand(
		NewRunCmd().Command(),
	)

	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

