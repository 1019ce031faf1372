package pathcopy

import (
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"pixelgardenlabs.io/pgl-sync/pkg/plog"
	"pixelgardenlabs.io/pgl-sync/pkg/util"
)

// parallelCopy distributes jobs to a fixed pool of threads-1 workers over
// the shared command queue. The calling goroutine enumerates the tree,
// enqueues Copy commands, then pushes exactly one Terminate per worker; it
// copies nothing itself. The result is the sum of the worker-local counters
// after all workers have been joined.
func (r *copyRun) parallelCopy(dstRoot string) (int, error) {
	queue := newCommandQueue()
	numWorkers := r.tgt.Threads - 1

	counts := make([]int, numWorkers)
	var wg sync.WaitGroup
	var dirGroup singleflight.Group

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			counts[slot] = r.copyWorker(queue, &dirGroup)
		}(i)
	}

	walkErr := r.traverse(dstRoot, func(job copyJob) {
		queue.push(command{kind: copyCommand, job: job})
	})

	// The walk is complete (or failed at the root): every worker gets
	// exactly one Terminate and drains the queue up to it.
	for n := 0; n < numWorkers; n++ {
		queue.push(command{kind: terminateCommand})
	}
	wg.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	if walkErr != nil {
		return total, walkErr
	}
	return total, nil
}

// copyWorker consumes commands until it sees a Terminate and returns its
// local success count. Failed copies are dropped, never retried.
func (r *copyRun) copyWorker(queue *commandQueue, dirGroup *singleflight.Group) int {
	count := 0
	for {
		cmd := queue.pop()
		if cmd.kind == terminateCommand {
			return count
		}
		job := cmd.job

		// The job's destination parent is created right before the copy
		// attempt. Creation is idempotent; the singleflight group keeps a
		// burst of siblings from issuing the same MkdirAll concurrently.
		parent := filepath.Dir(job.dstPath)
		if _, err, _ := dirGroup.Do(parent, func() (any, error) {
			return nil, os.MkdirAll(parent, util.UserWritableDirPerms)
		}); err != nil {
			r.copier.metrics.AddFilesFailed(1)
			plog.Warn("Cannot create destination directory, skipping", "dir", parent, "error", err)
			continue
		}

		if err := r.copier.copyFile(job.srcPath, job.dstPath, job.srcInfo); err != nil {
			r.copier.metrics.AddFilesFailed(1)
			plog.Warn("Copy failed, skipping", "src", job.srcPath, "error", err)
			continue
		}
		r.copier.metrics.AddFilesCopied(1)
		plog.Notice("COPY", "dst", job.dstPath)
		count++
	}
}
