package cmd

import (
	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-sync/pkg/engine"
	"pixelgardenlabs.io/pgl-sync/pkg/plog"
)

// newArchiveCmd creates the `archive` command: compress a target's stored
// data into a tar archive in its destination root.
func newArchiveCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "archive TARGET",
		Short: "Compress a target's stored data into a tar archive.",
		Long: "Compress a target's stored data into a tar archive placed in the\n" +
			"target's destination root. Snapshotting targets archive the newest\n" +
			"snapshot.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if format != "" {
				cfg.Archive.Format = format
			}

			archivePath, err := engine.NewRunner(cfg).Archive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			plog.Info("Archive created", "path", archivePath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Archive format: 'tar.gz' or 'tar.zst'. Overrides the config file.")
	return cmd
}
