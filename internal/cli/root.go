// Package cli implements the reinsim command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/reinsim/pkg/logger"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	LogLevel string
	Pretty   bool
}

// NewRootCommand creates the root command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "reinsim",
		Short:         "Monte Carlo loss simulator for Life, Health and Combined insurance books",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.Pretty, "pretty", true, "human readable log output")

	cmd.AddCommand(
		newSimulateCmd(opts),
		newSummarizeCmd(),
		newKindsCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger. Logs go to stderr so stdout stays parseable.
func (o *RootOptions) newLogger(errOut io.Writer) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  o.LogLevel,
		Pretty: o.Pretty,
		Output: errOut,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "reinsim %s\ncommit: %s\nbuilt:  %s\n", Version, GitCommit, BuildDate)
			return err
		},
	}
}
