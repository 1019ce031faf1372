//go:build !windows

package preflight

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// platformOnRootFilesystem compares the device ID of path against the device
// ID of "/".
func platformOnRootFilesystem(path string) (bool, error) {
	var rootStat unix.Stat_t
	if err := unix.Stat("/", &rootStat); err != nil {
		return false, fmt.Errorf("failed to stat root: %w", err)
	}

	var pathStat unix.Stat_t
	if err := unix.Stat(path, &pathStat); err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return pathStat.Dev == rootStat.Dev, nil
}
