package pathcopy

import "pixelgardenlabs.io/pgl-sync/pkg/plog"

// serialCopy executes every job immediately in traversal order on the
// calling goroutine.
func (r *copyRun) serialCopy(dstRoot string) (int, error) {
	count := 0
	err := r.traverse(dstRoot, func(job copyJob) {
		if err := r.copier.copyFile(job.srcPath, job.dstPath, job.srcInfo); err != nil {
			// Best effort: a failed copy is not retried and not surfaced,
			// the run just counts one file less.
			r.copier.metrics.AddFilesFailed(1)
			plog.Warn("Copy failed, skipping", "src", job.srcPath, "error", err)
			return
		}
		r.copier.metrics.AddFilesCopied(1)
		plog.Notice("COPY", "dst", job.dstPath)
		count++
	})
	return count, err
}
