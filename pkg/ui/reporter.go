package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"bskybot/pkg/bluesky"
	"bskybot/pkg/publisher"

	"github.com/dustin/go-humanize"
)

// ProgressStyle selects what is shown while waiting for the next post
type ProgressStyle string

const (
	ProgressCountdown ProgressStyle = "countdown"
	ProgressNextTime  ProgressStyle = "next-time"
	ProgressNone      ProgressStyle = "none"
)

// previewWidth caps how much of a post is echoed to the console
const previewWidth = 60

// ConsoleReporter prints publish progress for a person watching the terminal
type ConsoleReporter struct {
	w         io.Writer
	style     ProgressStyle
	countdown *Countdown
	notifier  *Notifier
	now       func() time.Time
}

var _ publisher.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a reporter writing to w
func NewConsoleReporter(w io.Writer, style ProgressStyle, notifier *Notifier) *ConsoleReporter {
	return &ConsoleReporter{
		w:         w,
		style:     style,
		countdown: NewCountdown(w, IsTerminal(w)),
		notifier:  notifier,
		now:       time.Now,
	}
}

// Progress returns the callback to run while waiting, or nil when the style
// shows no live countdown
func (r *ConsoleReporter) Progress() func(remaining time.Duration) {
	if r.style != ProgressCountdown || IsQuietMode() {
		return nil
	}
	return r.countdown.Update
}

func (r *ConsoleReporter) println(s string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(r.w, s)
}

func (r *ConsoleReporter) Posting(index, total int, text string) {
	r.countdown.Finish()
	r.println(fmt.Sprintf("%s %s", Cyan(fmt.Sprintf("[%d/%d]", index+1, total)), preview(text)))
}

func (r *ConsoleReporter) Posted(index, total int, ref bluesky.RecordRef) {
	r.println(fmt.Sprintf("%s %s", Green("  posted"), Dim(ref.URI)))
}

func (r *ConsoleReporter) Skipped(index, total int, text string) {
	r.println(fmt.Sprintf("%s %s", Yellow(fmt.Sprintf("[%d/%d] skipped duplicate:", index+1, total)), preview(text)))
}

func (r *ConsoleReporter) Waiting(index int, next time.Time, interval time.Duration) {
	switch r.style {
	case ProgressNextTime:
		r.println(fmt.Sprintf("Next post at %s (%s)", Cyan(next.Format("15:04:05")), humanize.RelTime(next, r.now(), "ago", "from now")))
	case ProgressCountdown:
		r.println(Dim(fmt.Sprintf("Waiting %s before the next post", interval)))
	}
}

func (r *ConsoleReporter) Completed(result *publisher.Result) {
	r.countdown.Finish()
	summary := fmt.Sprintf("All posts processed: %d submitted, %d skipped", result.Submitted, result.Skipped)
	r.println(Green(summary))
	r.notifier.Completed(summary)
}

func (r *ConsoleReporter) Failed(err error) {
	r.countdown.Finish()
	fmt.Fprintln(r.w, Red("Publishing failed: "+err.Error()))
	r.notifier.Failed(err.Error())
}

// preview shortens text to one line for the console
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewWidth {
		return text
	}
	return string(runes[:previewWidth-1]) + "…"
}
