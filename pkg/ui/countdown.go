package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// clearLine returns the cursor to column 0 and erases the line
const clearLine = "\r\033[K"

// Countdown prints the time left before the next post. On a terminal it
// rewrites a single line; elsewhere it prints one line per minute so logs
// stay readable.
type Countdown struct {
	mu         sync.Mutex
	w          io.Writer
	tty        bool
	lastMinute time.Duration
	active     bool
}

// NewCountdown creates a countdown writing to w
func NewCountdown(w io.Writer, tty bool) *Countdown {
	return &Countdown{w: w, tty: tty, lastMinute: -1}
}

// Update shows remaining
func (c *Countdown) Update(remaining time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tty {
		fmt.Fprintf(c.w, "%sNext post in %s", clearLine, Cyan(FormatRemaining(remaining)))
		c.active = true
		return
	}

	minute := remaining.Truncate(time.Minute)
	if minute == c.lastMinute {
		return
	}
	c.lastMinute = minute
	fmt.Fprintf(c.w, "Next post in %s\n", FormatRemaining(remaining))
}

// Finish ends an in-place countdown line and resets for the next wait
func (c *Countdown) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		fmt.Fprint(c.w, clearLine)
		c.active = false
	}
	c.lastMinute = -1
}

// FormatRemaining renders d as HH:MM:SS, rounding to the second
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
