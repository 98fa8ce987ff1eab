package splithttp

import (
	"sync"
	"sync/atomic"
	"time"
)

const progressInterval = 500 * time.Millisecond

// ProgressSnapshot is the read-only view handed to progress observers.
type ProgressSnapshot interface {
	Snapshot() int64
}

// ProgressCounter is the shared byte count of a run. Workers only add to it;
// it never drives control flow.
type ProgressCounter struct {
	downloaded atomic.Int64
}

func (p *ProgressCounter) Add(n int64) {
	p.downloaded.Add(n)
}

func (p *ProgressCounter) Snapshot() int64 {
	return p.downloaded.Load()
}

// startProgressReporter polls view and calls fn whenever the count moved.
// The returned stop func sends one final update and waits for the loop.
func startProgressReporter(fn func(downloaded, total int64), view ProgressSnapshot, total int64, interval time.Duration) func() {
	if fn == nil {
		return func() {}
	}
	doneCh := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var lastBytes int64
		for {
			select {
			case <-ticker.C:
				if current := view.Snapshot(); current > lastBytes {
					fn(current, total)
					lastBytes = current
				}
			case <-doneCh:
				fn(view.Snapshot(), total)
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(doneCh)
			wg.Wait()
		})
	}
}
