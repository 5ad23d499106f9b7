package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Task runs a function on a fixed interval until stopped
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	runs   atomic.Int64
}

// Every starts calling fn every interval until ctx is done or Stop is called.
// The first call happens one interval after start.
func Every(ctx context.Context, interval time.Duration, fn func(now time.Time)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				// A tick and a cancel can be ready together
				if ctx.Err() != nil {
					return
				}
				fn(now)
				t.runs.Add(1)
			}
		}
	}()

	return t
}

// Stop cancels the task and waits for its goroutine to exit. No call to fn is
// in progress or will start once Stop returns. Safe to call more than once.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed when the task's goroutine has exited
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Runs returns how many times fn has completed
func (t *Task) Runs() int64 {
	return t.runs.Load()
}
