package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDelayWaits(t *testing.T) {
	w := NewDelay(0, nil)

	start := time.Now()
	if err := w.Wait(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned after %v, expected at least 50ms", elapsed)
	}
}

func TestDelayZeroDuration(t *testing.T) {
	w := NewDelay(time.Millisecond, func(time.Duration) {
		t.Error("progress should not run for a zero wait")
	})
	if err := w.Wait(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelayCancelled(t *testing.T) {
	w := NewDelay(0, nil)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := w.Wait(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Wait did not return promptly after cancel: %v", elapsed)
	}
}

func TestDelayAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewDelay(0, nil).Wait(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDelayProgress(t *testing.T) {
	var mu sync.Mutex
	var calls []time.Duration

	w := NewDelay(10*time.Millisecond, func(remaining time.Duration) {
		mu.Lock()
		calls = append(calls, remaining)
		mu.Unlock()
	})

	if err := w.Wait(context.Background(), 100*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	got := append([]time.Duration(nil), calls...)
	mu.Unlock()

	if len(got) < 2 {
		t.Fatalf("expected the initial call plus ticks, got %d calls", len(got))
	}
	if got[0] != 100*time.Millisecond {
		t.Errorf("first progress call = %v, want full duration", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i] > got[i-1] {
			t.Errorf("remaining time increased: %v -> %v", got[i-1], got[i])
		}
	}

	// The task is stopped before Wait returns
	time.Sleep(40 * time.Millisecond)
	mu.Lock()
	after := len(calls)
	mu.Unlock()
	if after != len(got) {
		t.Errorf("progress ran after Wait returned: %d -> %d calls", len(got), after)
	}
}

func TestWaiterFunc(t *testing.T) {
	var got time.Duration
	var w Waiter = WaiterFunc(func(ctx context.Context, d time.Duration) error {
		got = d
		return nil
	})

	if err := w.Wait(context.Background(), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != time.Minute {
		t.Errorf("got %v, want 1m", got)
	}
}

func TestTaskStop(t *testing.T) {
	var mu sync.Mutex
	count := 0

	task := Every(context.Background(), 5*time.Millisecond, func(time.Time) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	time.Sleep(50 * time.Millisecond)
	task.Stop()

	mu.Lock()
	stopped := count
	mu.Unlock()

	if stopped == 0 {
		t.Fatal("expected the task to run at least once")
	}
	if int64(stopped) != task.Runs() {
		t.Errorf("Runs() = %d, counted %d", task.Runs(), stopped)
	}

	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != stopped {
		t.Errorf("task ran after Stop: %d -> %d", stopped, count)
	}

	// Second Stop is a no-op
	task.Stop()
}

func TestTaskStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Every(ctx, time.Hour, func(time.Time) {})

	cancel()
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not exit after context cancel")
	}

	if task.Runs() != 0 {
		t.Errorf("expected no runs, got %d", task.Runs())
	}
}
