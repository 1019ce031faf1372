package pathcopy

import "sync"

// commandKind discriminates the two commands a worker can consume.
type commandKind int

const (
	copyCommand commandKind = iota
	terminateCommand
)

// command is one queue entry: either a copy job or a termination marker.
type command struct {
	kind commandKind
	job  copyJob
}

// commandQueue is the single logical queue shared by the enumerating
// producer and the worker pool. It is unbounded: push never blocks, so peak
// memory is proportional to the number of outstanding un-consumed jobs. pop
// blocks until a command is available (no polling).
type commandQueue struct {
	mu    sync.Mutex
	ready *sync.Cond
	items []command
	head  int
}

func newCommandQueue() *commandQueue {
	q := &commandQueue{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// push appends a command and wakes one blocked consumer.
func (q *commandQueue) push(cmd command) {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()
	q.ready.Signal()
}

// pop removes and returns the oldest command, blocking while the queue is
// empty. Commands are consumed in the order they were enqueued.
func (q *commandQueue) pop() command {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head >= len(q.items) {
		q.ready.Wait()
	}
	cmd := q.items[q.head]
	q.items[q.head] = command{} // drop the job reference for the GC
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return cmd
}
