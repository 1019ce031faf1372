//go:build windows

package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// platformOnRootFilesystem on Windows checks whether the volume root for the
// path exists. For example, for "Z:\backup" it checks "Z:\". A path on a
// connected volume or network share reports false, matching the Unix notion
// that the data lives on a dedicated device rather than the system disk.
func platformOnRootFilesystem(path string) (bool, error) {
	volume := filepath.VolumeName(path)
	if volume == "" {
		// Relative path without a volume, resolved against the current drive.
		return true, nil
	}

	checkVol := volume
	if !strings.HasSuffix(checkVol, string(filepath.Separator)) {
		checkVol += string(filepath.Separator)
	}
	checkVol = filepath.Clean(checkVol)

	if _, err := os.Stat(checkVol); err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("volume root does not exist: %s. Ensure the drive is connected", checkVol)
		}
		return false, fmt.Errorf("failed to stat volume root %s: %w", checkVol, err)
	}
	return false, nil
}
