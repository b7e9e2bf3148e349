// Package cmd provides the CLI commands for spatialmatch.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/carmenstack/spatialmatch/internal/logging"
	"github.com/carmenstack/spatialmatch/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the spatialmatch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spatialmatch",
		Short:   "Spatial stacking and coalescence core for a multi-index geocoder",
		Long:    `spatialmatch enumerates candidate geocoder index stacks, coalesces them against a tile grid, and ranks the results.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("spatialmatch version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to spatialmatch.log")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newExplainCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.WriteToStderr = false
	if debugMode {
		cfg.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
