package pathcopy

import (
	"sync"
	"testing"
)

func TestCommandQueueFIFO(t *testing.T) {
	q := newCommandQueue()

	for _, name := range []string{"a", "b", "c"} {
		q.push(command{kind: copyCommand, job: copyJob{srcPath: name}})
	}
	q.push(command{kind: terminateCommand})

	var got []string
	for {
		cmd := q.pop()
		if cmd.kind == terminateCommand {
			break
		}
		got = append(got, cmd.job.srcPath)
	}

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("consumed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCommandQueueBlockingConsume(t *testing.T) {
	q := newCommandQueue()

	done := make(chan command, 1)
	go func() {
		done <- q.pop() // blocks until something is pushed
	}()

	q.push(command{kind: terminateCommand})

	if cmd := <-done; cmd.kind != terminateCommand {
		t.Errorf("expected terminate command, got kind %d", cmd.kind)
	}
}

func TestCommandQueueConcurrentConsumers(t *testing.T) {
	q := newCommandQueue()
	const jobs = 500
	const workers = 4

	var wg sync.WaitGroup
	counts := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for {
				cmd := q.pop()
				if cmd.kind == terminateCommand {
					return
				}
				counts[slot]++
			}
		}(i)
	}

	for i := 0; i < jobs; i++ {
		q.push(command{kind: copyCommand})
	}
	for i := 0; i < workers; i++ {
		q.push(command{kind: terminateCommand})
	}
	wg.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	if total != jobs {
		t.Errorf("workers consumed %d jobs, want %d", total, jobs)
	}
}
