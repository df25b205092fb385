package main

import (
	"io"
	"log/slog"

	"github.com/myrjola/petrarun/internal/clock"
	"github.com/myrjola/petrarun/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose bool
	clock   clock.Clock
}

// newRootCommand builds the command tree. Engines read time from clk.
func newRootCommand(clk clock.Clock) *cobra.Command {
	opts := &rootOptions{verbose: false, clock: clk}

	cmd := &cobra.Command{ //nolint:exhaustruct // defaults.
		Use:           "petrarun",
		Short:         "Follow workout plans in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newValidateCommand())

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	})))
}
