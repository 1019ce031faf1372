// Package target defines the unit of work for one synchronization run: a
// configured source/destination pair plus its policy (ignore lists,
// retention, threading, backend).
package target

import (
	"errors"
	"fmt"
)

// ErrUnsupportedBackend is returned when a target selects a backend that has
// no implementation. Invoking a stub backend is a reportable failure, never a
// silent skip.
var ErrUnsupportedBackend = errors.New("backend is not supported")

// Target describes one source/destination pair. It is owned by the caller
// for the duration of a run and must not be mutated while the run is active.
type Target struct {
	// Path is the source file or directory tree to copy from.
	Path string
	// TargetPath is the destination root. It must exist before a run starts.
	TargetPath string
	// Tag optionally names the target for selection on the command line.
	Tag string
	// Optional targets are skipped by a full backup pass and only run when
	// selected explicitly by tag.
	Optional bool
	// KeepNum is the number of snapshots to retain. 1 disables snapshotting
	// and enables incremental timestamp checking (unless AlwaysCopy is set);
	// values above 1 create a fresh timestamped snapshot directory per run.
	KeepNum int
	// AlwaysCopy disables the incremental timestamp check when KeepNum == 1.
	AlwaysCopy bool
	// IgnoreFiles and IgnoreDirs are ordered exclusion pattern lists; see
	// pkg/pathignore for the pattern syntax.
	IgnoreFiles []string
	IgnoreDirs  []string
	// Threads is the effective thread count for this target. A value of 1 or
	// below forces serial execution.
	Threads int
	// Backend selects the copy implementation.
	Backend Backend
}

// CheckTimestamps reports whether the incremental timestamp check applies to
// this target. Snapshot mode (KeepNum > 1) always copies into a fresh
// snapshot, so the check only exists for KeepNum == 1.
func (t *Target) CheckTimestamps() bool {
	return t.KeepNum == 1 && !t.AlwaysCopy
}

// Snapshotting reports whether runs of this target create timestamped
// snapshot directories.
func (t *Target) Snapshotting() bool {
	return t.KeepNum > 1
}

// Validate checks the structural invariants of the target.
func (t *Target) Validate() error {
	if t.Path == "" {
		return fmt.Errorf("target %s: source path is empty", t.describe())
	}
	if t.TargetPath == "" {
		return fmt.Errorf("target %s: destination path is empty", t.describe())
	}
	if t.KeepNum < 1 {
		return fmt.Errorf("target %s: keepNum must be >= 1, got %d", t.describe(), t.KeepNum)
	}
	return nil
}

func (t *Target) describe() string {
	if t.Tag != "" {
		return t.Tag
	}
	return t.Path
}
