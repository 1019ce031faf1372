// Package cmd implements the pgl-sync command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-sync/pkg/buildinfo"
	"pixelgardenlabs.io/pgl-sync/pkg/config"
	"pixelgardenlabs.io/pgl-sync/pkg/plog"
)

var (
	configDir string
	logLevel  string
	quiet     bool
)

// Execute runs the CLI. It installs signal handling so an interrupt cancels
// the context handed to the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "pgl-sync",
		Short: buildinfo.Name + " is a target-based backup synchronizer.",
		Long: buildinfo.Name + " copies configured source paths to their destinations,\n" +
			"keeping a bounded number of timestamped snapshots per target when configured.",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing "+config.ConfigFileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set the logging level: 'debug', 'notice', 'info', 'warn', 'error'. Overrides the config file.")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress routine output.")

	rootCmd.AddCommand(
		newBackupCmd(),
		newRestoreCmd(),
		newDaemonCmd(),
		newArchiveCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		plog.Error(buildinfo.Name+" failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig loads and validates the configuration for a run and applies the
// global logging flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	plog.SetLevel(plog.LevelFromString(cfg.LogLevel))
	plog.SetQuiet(quiet)

	cfg.LogSummary()
	return cfg, nil
}
