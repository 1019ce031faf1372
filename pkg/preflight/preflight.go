// Package preflight validates a target's endpoints before a run starts.
// The checks are read-only: they never create or modify anything.
package preflight

import (
	"fmt"
	"os"
)

// CheckSourceAccessible validates that the source path exists and is
// readable. Any kind of path (file or directory) is acceptable.
func CheckSourceAccessible(srcPath string) error {
	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source %s does not exist", srcPath)
		}
		return fmt.Errorf("cannot stat source %s: %w", srcPath, err)
	}
	return nil
}

// CheckDestinationAccessible validates that the destination root exists and
// is a directory. A missing destination root (for example an unmounted
// drive) fails here, before any copy attempt.
func CheckDestinationAccessible(dstPath string) error {
	info, err := os.Stat(dstPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("destination %s does not exist. Ensure the drive is mounted", dstPath)
		}
		return fmt.Errorf("cannot stat destination %s: %w", dstPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("destination %s is not a directory", dstPath)
	}
	return nil
}

// OnRootFilesystem reports whether path resides on the same device as the
// system root. A destination that was supposed to be an external drive but
// reports true here is likely a "ghost" directory left behind by a missing
// mount; callers surface this as a warning, not a failure.
func OnRootFilesystem(path string) (bool, error) {
	return platformOnRootFilesystem(path)
}
