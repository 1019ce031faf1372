package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-sync/pkg/buildinfo"
	"pixelgardenlabs.io/pgl-sync/pkg/engine"
	"pixelgardenlabs.io/pgl-sync/pkg/plog"
)

// newBackupCmd creates the `backup` command. Without an argument it runs
// every non-optional target; with a tag it runs only the matching target,
// optional or not.
func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "backup [TARGET]",
		Aliases: []string{"bu"},
		Short:   "Run a backup pass over the configured targets.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tag := ""
			if len(args) == 1 {
				tag = args[0]
			}

			start := time.Now()
			copied, err := engine.NewRunner(cfg).Backup(cmd.Context(), tag)
			if err != nil {
				return err
			}
			plog.Info(buildinfo.Name+" finished successfully.", "files_copied", copied, "duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
