// Package cli wires the idxbeast command line, in the shape of the
// teacher's cobra root command: a persistent set of flags shared by every
// subcommand, each subcommand owning its own RunE.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idxbeast/internal/config"
)

var (
	// Version is set by the build, mirroring the teacher's ldflags-injected
	// version variable.
	Version = "dev"

	cfg config.Config
)

// Execute runs the root command to completion.
func Execute(ctx context.Context) error {
	cfg = config.Default()

	rootCmd := &cobra.Command{
		Use:     "idxbeast",
		Short:   "A local full-text document indexer and query engine",
		Version: Version,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.StorePath, "store", cfg.StorePath, "Path to the sqlite index file")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newIndexCmd(),
		newQueryCmd(),
		newServeCmd(),
	)

	if err := cfg.ApplyEnv(); err != nil {
		return fmt.Errorf("environment configuration: %w", err)
	}

	return rootCmd.ExecuteContext(ctx)
}
