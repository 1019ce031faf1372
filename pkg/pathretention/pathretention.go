// Package pathretention prunes old snapshot directories beyond a keep count.
//
// Snapshot names are fixed-format timestamps, so lexicographic order equals
// chronological order and the smallest name is always the oldest snapshot.
package pathretention

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"pixelgardenlabs.io/pgl-sync/pkg/plog"
)

// Prune deletes the oldest entries under snapshotRoot until at most
// keepCount remain.
//
// It is a no-op when the root does not exist, is a plain file, or holds
// fewer than two entries. A failure to scan the root is propagated: the
// caller learns that an over-quota set may remain (this package never
// silently retains one). A failure to delete an individual snapshot is
// tolerated and logged; the entry is dropped from further consideration so
// the pass terminates, possibly leaving an extra snapshot behind.
func Prune(snapshotRoot string, keepCount int) error {
	if keepCount < 1 {
		return fmt.Errorf("keep count must be >= 1, got %d", keepCount)
	}

	info, err := os.Stat(snapshotRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Nothing to prune yet.
		}
		return fmt.Errorf("cannot access snapshot root %s: %w", snapshotRoot, err)
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(snapshotRoot)
	if err != nil {
		return fmt.Errorf("failed to scan snapshot root %s: %w", snapshotRoot, err)
	}
	if len(entries) < 2 {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	// Oldest first: delete from the front until the set fits the bound.
	for len(names) > keepCount {
		oldest := names[0]
		names = names[1:]

		path := filepath.Join(snapshotRoot, oldest)
		plog.Notice("PRUNE", "snapshot", path)
		if err := os.RemoveAll(path); err != nil {
			// Best effort: leave the extra snapshot rather than abort the run.
			plog.Warn("Failed to delete outdated snapshot", "snapshot", path, "error", err)
		}
	}
	return nil
}
