package pathcopy

import (
	"fmt"
	"os"
	"path/filepath"

	"pixelgardenlabs.io/pgl-sync/pkg/plog"
	"pixelgardenlabs.io/pgl-sync/pkg/util"
)

// copyJob is a single (source file, destination file) pair that passed the
// ignore and incremental checks. It is a plain value consumed exactly once,
// by either the serial executor or a worker.
type copyJob struct {
	srcPath string
	dstPath string
	srcInfo os.FileInfo
}

// walkItem pairs one source entry with its mapped destination path and its
// path relative to the source root (the candidate for directory ignore
// matching).
type walkItem struct {
	srcPath string
	relPath string
	dstPath string
	entry   os.DirEntry
}

// traverse walks the source tree iteratively, one directory level at a time,
// using an explicit stack; recursion would make stack depth proportional to
// tree depth. visit is called for every file job that survived the ignore
// and incremental checks.
//
// Failure to read the source root is fatal and returned. Everything below
// the root is best effort: an unreadable subdirectory or entry is logged and
// skipped, and the run simply copies fewer files.
func (r *copyRun) traverse(dstRoot string, visit func(copyJob)) error {
	rootEntries, err := os.ReadDir(r.tgt.Path)
	if err != nil {
		return fmt.Errorf("failed to read source root %s: %w", r.tgt.Path, err)
	}

	stack := make([]walkItem, 0, len(rootEntries))
	for _, entry := range rootEntries {
		stack = append(stack, walkItem{
			srcPath: filepath.Join(r.tgt.Path, entry.Name()),
			relPath: entry.Name(),
			dstPath: filepath.Join(dstRoot, entry.Name()),
			entry:   entry,
		})
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.entry.IsDir() {
			r.visitDir(item, &stack)
			continue
		}
		r.visitFile(item, visit)
	}
	return nil
}

// visitDir applies the directory ignore check, materializes the mapped
// destination directory and pushes the directory's children.
func (r *copyRun) visitDir(item walkItem, stack *[]walkItem) {
	if r.matcher.Match(item.relPath, true) {
		r.copier.metrics.AddDirsExcluded(1)
		plog.Notice("SKIPDIR", "reason", "ignored by pattern", "dir", item.relPath)
		return
	}

	if err := r.ensureDir(item.dstPath); err != nil {
		plog.Warn("Cannot create destination directory, skipping subtree", "dir", item.relPath, "error", err)
		return
	}

	children, err := os.ReadDir(item.srcPath)
	if err != nil {
		// Best-effort enumeration: an unreadable directory costs its
		// subtree, not the run.
		plog.Warn("Cannot read source directory, skipping subtree", "dir", item.relPath, "error", err)
		return
	}
	for _, child := range children {
		*stack = append(*stack, walkItem{
			srcPath: filepath.Join(item.srcPath, child.Name()),
			relPath: filepath.Join(item.relPath, child.Name()),
			dstPath: filepath.Join(item.dstPath, child.Name()),
			entry:   child,
		})
	}
}

// visitFile applies the ignore and incremental checks to a non-directory
// entry and hands surviving regular files to visit.
func (r *copyRun) visitFile(item walkItem, visit func(copyJob)) {
	if r.matcher.Match(item.relPath, false) {
		r.copier.metrics.AddFilesExcluded(1)
		plog.Notice("SKIP", "reason", "ignored by pattern", "file", item.relPath)
		return
	}

	info, err := item.entry.Info()
	if err != nil {
		plog.Warn("Cannot stat source entry, skipping", "file", item.relPath, "error", err)
		return
	}
	if !info.Mode().IsRegular() {
		// Symlinks, sockets, devices: not part of a whole-file copy pass.
		plog.Notice("SKIP", "type", info.Mode().String(), "file", item.relPath)
		return
	}

	if !shouldCopy(info, item.dstPath, r.checkTimestamps) {
		r.copier.metrics.AddFilesUpToDate(1)
		return
	}

	visit(copyJob{srcPath: item.srcPath, dstPath: item.dstPath, srcInfo: info})
}

// ensureDir creates dir if it does not exist yet. An existing directory is
// success; creation is idempotent.
func (r *copyRun) ensureDir(dir string) error {
	if info, err := os.Stat(dir); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("destination %s exists but is not a directory", dir)
	}
	if err := os.MkdirAll(dir, util.UserWritableDirPerms); err != nil {
		return err
	}
	r.copier.metrics.AddDirsCreated(1)
	return nil
}
