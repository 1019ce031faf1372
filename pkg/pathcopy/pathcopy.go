// Package pathcopy implements the synchronization core: it copies one
// target's source path (file or directory tree) to its destination, keeping
// timestamped snapshot directories when the target's retention count is
// above one.
//
// --- ARCHITECTURAL OVERVIEW ---
//
// A run proceeds in two possible shapes, selected by the target's effective
// thread count:
//
// 1. Serial: the enumerator walks the source tree with an explicit stack
//    (no recursion, so arbitrarily deep trees cannot exhaust the call
//    stack) and copies each eligible file in traversal order.
//
// 2. Parallel (threads > 1): the enumerator runs on the calling goroutine
//    and feeds Copy commands into an unbounded FIFO command queue consumed
//    by threads-1 long-lived workers. After the walk it pushes one
//    Terminate command per worker; the run's result is the sum of the
//    worker-local counters after the join. The caller itself copies
//    nothing.
//
// Both shapes share the same policy pipeline per entry: ignore matching
// first, then the incremental timestamp decision, then the copy. Per-entry
// failures (unreadable directory, failed copy) are absorbed: the run reports
// fewer files copied rather than failing wholesale. Only root-level failures
// (source root unreadable, destination root missing) abort the target.
package pathcopy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"pixelgardenlabs.io/pgl-sync/pkg/metrics"
	"pixelgardenlabs.io/pgl-sync/pkg/pathignore"
	"pixelgardenlabs.io/pgl-sync/pkg/pool"
	"pixelgardenlabs.io/pgl-sync/pkg/target"
	"pixelgardenlabs.io/pgl-sync/pkg/util"
)

// SnapshotTimeFormat is the fixed, lexicographically sortable layout of
// snapshot directory names. It is second-resolution, so two runs of the same
// target cannot collide on a name.
const SnapshotTimeFormat = "2006-01-02 15:04:05"

// ErrDestinationNotFound is returned when a target's destination root does
// not exist before the run starts (for example an unmounted drive).
var ErrDestinationNotFound = errors.New("destination is unavailable")

// Copier executes synchronization runs. It is stateless between runs and
// safe for concurrent use; per-run state lives in a copyRun.
type Copier struct {
	bufPool *pool.FixedBufferPool
	metrics metrics.Metrics
}

// DefaultBufferSizeKB is the I/O buffer size used when the configuration
// does not specify one.
const DefaultBufferSizeKB = 256

// NewCopier creates a Copier with the given I/O buffer size in kilobytes.
// Pass nil to disable metrics collection.
func NewCopier(bufferSizeKB int, m metrics.Metrics) *Copier {
	if bufferSizeKB <= 0 {
		bufferSizeKB = DefaultBufferSizeKB
	}
	if m == nil {
		m = &metrics.NoopMetrics{}
	}
	return &Copier{
		bufPool: pool.NewFixedBuffer(int64(bufferSizeKB) * 1024),
		metrics: m,
	}
}

// MappedRoot returns the destination directory holding a directory target's
// copies: targetPath/<source-root-name>. With snapshotting enabled, the
// per-run snapshot directories live directly beneath it, and retention is
// applied against it.
func MappedRoot(tgt *target.Target) string {
	return filepath.Join(tgt.TargetPath, filepath.Base(tgt.Path))
}

// Run synchronizes one target and returns the number of files copied.
//
// The destination root must exist before the run starts; a missing root
// yields ErrDestinationNotFound before any copy attempt. A non-local backend
// is a stub and fails with target.ErrUnsupportedBackend.
func (c *Copier) Run(ctx context.Context, tgt *target.Target) (int, error) {
	// Check for cancellation before starting the heavy work. A run that has
	// started proceeds to completion; there is no mid-run abort.
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	if err := tgt.Validate(); err != nil {
		return 0, err
	}
	if tgt.Backend != target.Local {
		return 0, fmt.Errorf("backend %q: %w", tgt.Backend, target.ErrUnsupportedBackend)
	}

	dstInfo, err := os.Stat(tgt.TargetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("destination %s: %w", tgt.TargetPath, ErrDestinationNotFound)
		}
		return 0, fmt.Errorf("cannot access destination %s: %w", tgt.TargetPath, err)
	}
	if !dstInfo.IsDir() {
		return 0, fmt.Errorf("destination %s is not a directory", tgt.TargetPath)
	}

	srcInfo, err := os.Stat(tgt.Path)
	if err != nil {
		return 0, fmt.Errorf("cannot access source %s: %w", tgt.Path, err)
	}

	run := &copyRun{
		copier:          c,
		tgt:             tgt,
		matcher:         pathignore.NewMatcher(tgt.IgnoreFiles, tgt.IgnoreDirs),
		checkTimestamps: tgt.CheckTimestamps(),
		// One timestamp per run: every file written during this invocation
		// lands in the same snapshot directory.
		timestamp: time.Now().UTC().Format(SnapshotTimeFormat),
	}

	if !srcInfo.IsDir() {
		return run.copySingleFile(srcInfo)
	}
	return run.execute()
}

// RunInto synchronizes a directory source directly into dstRoot, bypassing
// the base-name mapping and snapshot handling of Run. Restores use it to put
// a stored tree back at its original location. dstRoot is created if absent.
func (c *Copier) RunInto(ctx context.Context, tgt *target.Target, dstRoot string) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	if err := tgt.Validate(); err != nil {
		return 0, err
	}
	if tgt.Backend != target.Local {
		return 0, fmt.Errorf("backend %q: %w", tgt.Backend, target.ErrUnsupportedBackend)
	}

	srcInfo, err := os.Stat(tgt.Path)
	if err != nil {
		return 0, fmt.Errorf("cannot access source %s: %w", tgt.Path, err)
	}
	if !srcInfo.IsDir() {
		return 0, fmt.Errorf("source %s is not a directory", tgt.Path)
	}

	run := &copyRun{
		copier:          c,
		tgt:             tgt,
		matcher:         pathignore.NewMatcher(tgt.IgnoreFiles, tgt.IgnoreDirs),
		checkTimestamps: tgt.CheckTimestamps(),
		timestamp:       time.Now().UTC().Format(SnapshotTimeFormat),
	}

	if err := os.MkdirAll(dstRoot, util.UserWritableDirPerms); err != nil {
		return 0, fmt.Errorf("failed to create destination root %s: %w", dstRoot, err)
	}

	if tgt.Threads > 1 {
		return run.parallelCopy(dstRoot)
	}
	return run.serialCopy(dstRoot)
}

// copyRun holds the state for a single synchronization run.
type copyRun struct {
	copier          *Copier
	tgt             *target.Target
	matcher         *pathignore.Matcher
	checkTimestamps bool
	timestamp       string
}

// copySingleFile handles a source path that is itself a regular file: one
// job, copied synchronously regardless of the thread count. Unlike per-entry
// failures inside a tree, a failure here is the whole run and is surfaced.
func (r *copyRun) copySingleFile(srcInfo os.FileInfo) (int, error) {
	name := filepath.Base(r.tgt.Path)
	if r.matcher.Match(name, false) {
		r.copier.metrics.AddFilesExcluded(1)
		return 0, nil
	}

	dstPath := filepath.Join(r.tgt.TargetPath, name)
	if !shouldCopy(srcInfo, dstPath, r.checkTimestamps) {
		r.copier.metrics.AddFilesUpToDate(1)
		return 0, nil
	}

	if err := r.copier.copyFile(r.tgt.Path, dstPath, srcInfo); err != nil {
		return 0, err
	}
	r.copier.metrics.AddFilesCopied(1)
	return 1, nil
}

// execute synchronizes a directory source.
func (r *copyRun) execute() (int, error) {
	dstRoot := MappedRoot(r.tgt)
	if r.tgt.Snapshotting() {
		dstRoot = filepath.Join(dstRoot, r.timestamp)
	}
	if err := os.MkdirAll(dstRoot, util.UserWritableDirPerms); err != nil {
		return 0, fmt.Errorf("failed to create destination root %s: %w", dstRoot, err)
	}

	if r.tgt.Threads > 1 {
		return r.parallelCopy(dstRoot)
	}
	return r.serialCopy(dstRoot)
}

// copyFile copies one regular file, preserving its mode and modification
// time. The destination's parent directory must already exist.
func (c *Copier) copyFile(src, dst string, srcInfo os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	bufPtr := c.bufPool.Get()
	n, err := io.CopyBuffer(out, in, *bufPtr)
	c.bufPool.Put(bufPtr)
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to copy content from %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}
	c.metrics.AddBytesWritten(n)

	// Preserve the source modification time so the incremental check of the
	// next run sees equal timestamps for an untouched file.
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return fmt.Errorf("failed to set timestamps on %s: %w", dst, err)
	}
	return nil
}
