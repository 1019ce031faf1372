package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-sync/pkg/buildinfo"
	"pixelgardenlabs.io/pgl-sync/pkg/engine"
	"pixelgardenlabs.io/pgl-sync/pkg/plog"
)

// newRestoreCmd creates the `restore` command. Restores overwrite the
// target's source location with its stored data.
func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore TARGET",
		Short: "Copy a target's stored data back to its source location.",
		Long: "Copy a target's stored data back to its source location.\n" +
			"Snapshotting targets restore from the newest snapshot. Existing\n" +
			"files at the source are overwritten.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			start := time.Now()
			copied, err := engine.NewRunner(cfg).Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			plog.Info(buildinfo.Name+" restore finished.", "files_restored", copied, "duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
