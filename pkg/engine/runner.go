// Package engine orchestrates synchronization runs over the configured
// targets: preflight validation, the copy itself, and snapshot retention.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixelgardenlabs.io/pgl-sync/pkg/config"
	"pixelgardenlabs.io/pgl-sync/pkg/lockfile"
	"pixelgardenlabs.io/pgl-sync/pkg/metrics"
	"pixelgardenlabs.io/pgl-sync/pkg/patharchive"
	"pixelgardenlabs.io/pgl-sync/pkg/pathcopy"
	"pixelgardenlabs.io/pgl-sync/pkg/pathretention"
	"pixelgardenlabs.io/pgl-sync/pkg/plog"
	"pixelgardenlabs.io/pgl-sync/pkg/preflight"
	"pixelgardenlabs.io/pgl-sync/pkg/target"
)

// Runner executes backup and restore passes for a loaded configuration.
// It is safe for sequential reuse; daemon mode runs one pass at a time.
type Runner struct {
	cfg     config.Config
	copier  *pathcopy.Copier
	metrics metrics.Metrics
}

// NewRunner creates a Runner from a validated configuration.
func NewRunner(cfg config.Config) *Runner {
	var m metrics.Metrics = &metrics.NoopMetrics{}
	if cfg.Engine.Metrics {
		m = &metrics.CopyMetrics{}
	}
	return &Runner{
		cfg:     cfg,
		copier:  pathcopy.NewCopier(cfg.Engine.Performance.BufferSizeKB, m),
		metrics: m,
	}
}

// Backup runs a backup pass. With an empty tag every non-optional target
// runs; with a tag only the matching target runs, optional or not. Failed
// targets are reported and do not stop the pass; the joined error of all
// failures is returned alongside the total number of files copied.
func (r *Runner) Backup(ctx context.Context, tag string) (int, error) {
	start := time.Now()

	var selected []config.TargetConfig
	if tag == "" {
		for _, tc := range r.cfg.Targets {
			if tc.Optional {
				plog.Debug("Skipping optional target", "target", describeTarget(tc))
				continue
			}
			selected = append(selected, tc)
		}
	} else {
		tc, err := r.cfg.FindTarget(tag)
		if err != nil {
			return 0, err
		}
		selected = []config.TargetConfig{tc}
	}

	if len(selected) == 0 {
		plog.Warn("No targets to back up. Add targets to the config file or select one by tag.")
		return 0, nil
	}

	total := 0
	var errs []error
	for i := range selected {
		tgt := r.cfg.BuildTarget(selected[i])
		copied, err := r.backupTarget(ctx, &tgt)
		total += copied
		if err != nil {
			plog.Error("Target failed", "target", tgt.Tag, "source", tgt.Path, "error", err)
			errs = append(errs, fmt.Errorf("target %s: %w", describeTarget(selected[i]), err))
			continue
		}
		plog.Info("Target complete", "target", describeTarget(selected[i]), "files_copied", copied)
	}

	r.metrics.LogSummary("Backup pass complete")
	plog.Info("Backup pass finished", "targets", len(selected), "files_copied", total, "duration", time.Since(start).Round(time.Millisecond))
	return total, errors.Join(errs...)
}

// backupTarget runs preflight, the copy, and retention for one target.
func (r *Runner) backupTarget(ctx context.Context, tgt *target.Target) (int, error) {
	if err := preflight.CheckSourceAccessible(tgt.Path); err != nil {
		return 0, err
	}
	if err := preflight.CheckDestinationAccessible(tgt.TargetPath); err != nil {
		return 0, fmt.Errorf("%w: %s", pathcopy.ErrDestinationNotFound, err)
	}
	// A destination on the system disk is often a ghost directory left by a
	// missing mount. It can also be a deliberate local setup, so this only
	// informs, it never blocks the run.
	if onRoot, err := preflight.OnRootFilesystem(tgt.TargetPath); err == nil && onRoot {
		plog.Debug("Destination resides on the root filesystem", "destination", tgt.TargetPath)
	}

	lock, err := lockfile.Acquire(tgt.TargetPath)
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	plog.Info("Starting backup", "source", tgt.Path, "destination", tgt.TargetPath, "threads", tgt.Threads)
	copied, err := r.copier.Run(ctx, tgt)
	if err != nil {
		return copied, err
	}

	if tgt.Snapshotting() {
		if err := pathretention.Prune(pathcopy.MappedRoot(tgt), tgt.KeepNum); err != nil {
			return copied, fmt.Errorf("retention failed: %w", err)
		}
	}
	return copied, nil
}

// Restore copies a target's stored data back to its source location. The
// target is selected by tag. Snapshotting targets restore from the newest
// snapshot; incremental targets restore from the mapped destination root.
// Restores always overwrite, regardless of the target's AlwaysCopy setting.
func (r *Runner) Restore(ctx context.Context, tag string) (int, error) {
	tc, err := r.cfg.FindTarget(tag)
	if err != nil {
		return 0, err
	}
	tgt := r.cfg.BuildTarget(tc)

	plog.Info("Starting restore", "target", describeTarget(tc), "source", tgt.TargetPath, "destination", tgt.Path)

	// The restore shape is decided by what was stored, not by the current
	// state of the source: the source may be exactly what was lost.
	stored := pathcopy.MappedRoot(&tgt)
	storedInfo, err := os.Stat(stored)
	if err != nil {
		return 0, fmt.Errorf("nothing to restore for target %s: %w", describeTarget(tc), err)
	}

	var copied int
	if !storedInfo.IsDir() {
		// A single-file target was stored as targetPath/<name>; copy it back
		// next to wherever the original lives.
		reversed := reverseTarget(&tgt, stored, filepath.Dir(tgt.Path))
		copied, err = r.copier.Run(ctx, &reversed)
	} else {
		storedRoot := stored
		if tgt.Snapshotting() {
			storedRoot, err = newestSnapshot(storedRoot)
			if err != nil {
				return 0, err
			}
		}
		reversed := reverseTarget(&tgt, storedRoot, tgt.Path)
		copied, err = r.copier.RunInto(ctx, &reversed, tgt.Path)
	}
	if err != nil {
		return copied, err
	}
	r.metrics.LogSummary("Restore complete")
	return copied, nil
}

// Archive compresses a target's stored data into a tar archive placed in the
// target's destination root, using the configured archive format. For
// snapshotting targets the newest snapshot is archived. The path of the
// written archive is returned.
func (r *Runner) Archive(ctx context.Context, tag string) (string, error) {
	tc, err := r.cfg.FindTarget(tag)
	if err != nil {
		return "", err
	}
	tgt := r.cfg.BuildTarget(tc)

	format, err := patharchive.ParseFormat(r.cfg.Archive.Format)
	if err != nil {
		return "", err
	}

	stored := pathcopy.MappedRoot(&tgt)
	info, err := os.Stat(stored)
	if err != nil {
		return "", fmt.Errorf("nothing to archive for target %s: %w", describeTarget(tc), err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("target %s stores a single file, nothing to archive", describeTarget(tc))
	}

	storedRoot := stored
	name := filepath.Base(stored)
	if tgt.Snapshotting() {
		storedRoot, err = newestSnapshot(stored)
		if err != nil {
			return "", err
		}
		name = name + "-" + filepath.Base(storedRoot)
	}

	// Snapshot names carry spaces and colons; colons are illegal in file
	// names on some filesystems.
	name = archiveNameReplacer.Replace(name)
	archivePath := filepath.Join(tgt.TargetPath, name+format.Extension())

	archiver := patharchive.NewArchiver(format, r.cfg.Engine.Performance.BufferSizeKB)
	if err := archiver.Compress(ctx, storedRoot, archivePath); err != nil {
		return "", err
	}
	plog.Info("Archive written", "target", describeTarget(tc), "archive", archivePath)
	return archivePath, nil
}

var archiveNameReplacer = strings.NewReplacer(" ", "_", ":", "-")

// reverseTarget builds the run target for a restore: stored data becomes the
// source, ignore lists are cleared so everything that was stored comes back,
// and AlwaysCopy disables the incremental check.
func reverseTarget(tgt *target.Target, storedPath, restoreRoot string) target.Target {
	return target.Target{
		Path:       storedPath,
		TargetPath: restoreRoot,
		Tag:        tgt.Tag,
		KeepNum:    1,
		AlwaysCopy: true,
		Threads:    tgt.Threads,
		Backend:    tgt.Backend,
	}
}

// newestSnapshot returns the lexicographically largest child of the snapshot
// root. Snapshot names are fixed-format timestamps, so lexical order is
// chronological order.
func newestSnapshot(snapshotRoot string) (string, error) {
	entries, err := os.ReadDir(snapshotRoot)
	if err != nil {
		return "", fmt.Errorf("cannot read snapshot root %s: %w", snapshotRoot, err)
	}
	newest := ""
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Name() > newest {
			newest = entry.Name()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no snapshots found in %s", snapshotRoot)
	}
	return filepath.Join(snapshotRoot, newest), nil
}

func describeTarget(tc config.TargetConfig) string {
	if tc.Tag != "" {
		return tc.Tag
	}
	return tc.Path
}
