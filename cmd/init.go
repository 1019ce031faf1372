package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-sync/pkg/config"
)

// newInitCmd creates the `init` command: write a default config file for the
// user to fill in.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default " + config.ConfigFileName + " file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := filepath.Join(configDir, config.ConfigFileName)
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
			}

			cfg := config.NewDefault()
			// Seed one optional example target so the shape of the targets
			// array is visible in the generated file. The placeholder paths
			// keep the file valid until the user edits them in.
			cfg.Targets = []config.TargetConfig{
				{
					Path:        "~/Documents",
					TargetPath:  "/mnt/backup",
					Tag:         "example",
					Optional:    true,
					KeepNum:     1,
					IgnoreFiles: []string{},
					IgnoreDirs:  []string{},
				},
			}
			return config.Generate(configDir, cfg)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file.")
	return cmd
}
