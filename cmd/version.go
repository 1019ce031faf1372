package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-sync/pkg/buildinfo"
)

// newVersionCmd creates the `version` command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the " + buildinfo.Name + " version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s (%s/%s)\n", buildinfo.Name, buildinfo.Version, runtime.GOOS, runtime.GOARCH)
		},
	}
}
