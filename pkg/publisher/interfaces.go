package publisher

import (
	"context"
	"time"

	"bskybot/pkg/bluesky"
)

// Client is the subset of the XRPC API a run needs
type Client interface {
	CreateSession(ctx context.Context, identifier, password string) (*bluesky.Session, error)
	CreatePost(ctx context.Context, session *bluesky.Session, post bluesky.PostRecord) (*bluesky.RecordRef, error)
}

// Reporter receives progress events for presentation. Calls are made from the
// goroutine running the publisher.
type Reporter interface {
	Posting(index, total int, text string)
	Posted(index, total int, ref bluesky.RecordRef)
	Skipped(index, total int, text string)
	Waiting(index int, next time.Time, interval time.Duration)
	Completed(result *Result)
	Failed(err error)
}

// NopReporter discards all events
type NopReporter struct{}

func (NopReporter) Posting(int, int, string)              {}
func (NopReporter) Posted(int, int, bluesky.RecordRef)    {}
func (NopReporter) Skipped(int, int, string)              {}
func (NopReporter) Waiting(int, time.Time, time.Duration) {}
func (NopReporter) Completed(*Result)                     {}
func (NopReporter) Failed(error)                          {}

var _ Client = (*bluesky.Client)(nil)
