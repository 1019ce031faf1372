package metrics

import (
	"sync"
	"testing"
)

func TestCopyMetricsConcurrentAdds(t *testing.T) {
	m := &CopyMetrics{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.AddFilesCopied(1)
				m.AddBytesWritten(10)
			}
		}()
	}
	wg.Wait()

	if got := m.FilesCopied.Load(); got != 800 {
		t.Errorf("FilesCopied = %d, want 800", got)
	}
	if got := m.BytesWritten.Load(); got != 8000 {
		t.Errorf("BytesWritten = %d, want 8000", got)
	}
}

func TestNoopMetricsDoesNothing(t *testing.T) {
	var m Metrics = &NoopMetrics{}

	// Must not panic or accumulate anything.
	m.AddFilesCopied(5)
	m.AddFilesFailed(1)
	m.LogSummary("noop")
}
