// Package schedule provides the fixed delay inserted between consecutive posts.
//
// A Waiter blocks for a duration or until its context is cancelled:
//
//	waiter := schedule.NewDelay(time.Second, func(remaining time.Duration) {
//	    fmt.Printf("\rnext post in %s", remaining)
//	})
//	if err := waiter.Wait(ctx, time.Hour); err != nil {
//	    // ctx was cancelled
//	}
//
// Progress callbacks run on a Task, a repeating ticker bound to a single wait.
// The task is stopped before Wait returns, so no callback fires after the wait
// is over.
package schedule
