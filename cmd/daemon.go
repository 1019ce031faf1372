package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-sync/pkg/daemon"
	"pixelgardenlabs.io/pgl-sync/pkg/engine"
)

// newDaemonCmd creates the `daemon` command: periodic backup passes until
// interrupted.
func newDaemonCmd() *cobra.Command {
	var intervalSeconds int

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run backup passes periodically until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if intervalSeconds > 0 {
				cfg.Daemon.IntervalSeconds = intervalSeconds
			}

			interval := time.Duration(cfg.Daemon.IntervalSeconds) * time.Second
			err = daemon.New(engine.NewRunner(cfg), interval).Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				// An interrupt is the normal way to stop the daemon.
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVar(&intervalSeconds, "interval", 0, "Seconds between backup passes. Overrides the config file.")
	return cmd
}
