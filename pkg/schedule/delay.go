package schedule

import (
	"context"
	"time"
)

// Waiter blocks between posts
type Waiter interface {
	// Wait blocks for d or until ctx is done, returning ctx.Err() in the latter case
	Wait(ctx context.Context, d time.Duration) error
}

// WaiterFunc adapts a function to the Waiter interface
type WaiterFunc func(ctx context.Context, d time.Duration) error

// Wait calls f(ctx, d)
func (f WaiterFunc) Wait(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// ProgressFunc receives the time left in a wait
type ProgressFunc func(remaining time.Duration)

// Delay is a real-time Waiter with optional periodic progress
type Delay struct {
	tick     time.Duration
	progress ProgressFunc
}

// NewDelay creates a Delay. progress is called once when a wait starts and then
// every tick; a nil progress or non-positive tick disables it.
func NewDelay(tick time.Duration, progress ProgressFunc) *Delay {
	return &Delay{tick: tick, progress: progress}
}

// Wait blocks for d or until ctx is done
func (w *Delay) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	deadline := time.Now().Add(d)
	timer := time.NewTimer(d)
	defer timer.Stop()

	if w.progress != nil && w.tick > 0 {
		w.progress(d)
		task := Every(ctx, w.tick, func(now time.Time) {
			remaining := deadline.Sub(now)
			if remaining < 0 {
				remaining = 0
			}
			w.progress(remaining)
		})
		defer task.Stop()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
