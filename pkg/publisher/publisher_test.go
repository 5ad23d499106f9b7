package publisher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bskybot/pkg/bluesky"
	"bskybot/pkg/dedup"
	"bskybot/pkg/errors"
	"bskybot/pkg/logger"
	"bskybot/pkg/posts"
	"bskybot/pkg/richtext"
	"bskybot/pkg/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// event is one observable step of a run, in order
type event struct {
	kind string
	text string
	d    time.Duration
}

// timeline records client calls and waits in the order they happen
type timeline struct {
	mu     sync.Mutex
	events []event
}

func (tl *timeline) add(e event) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.events = append(tl.events, e)
}

func (tl *timeline) kinds() []string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	kinds := make([]string, len(tl.events))
	for i, e := range tl.events {
		kinds[i] = e.kind
	}
	return kinds
}

// fakeClient records calls and fails on demand
type fakeClient struct {
	tl         *timeline
	sessionErr error
	failAt     int
	postErr    error

	sessionCalls int32
	inFlight     int32
	maxInFlight  int32

	mu    sync.Mutex
	posts []bluesky.PostRecord
}

func newFakeClient(tl *timeline) *fakeClient {
	return &fakeClient{tl: tl, failAt: -1}
}

func (c *fakeClient) CreateSession(ctx context.Context, identifier, password string) (*bluesky.Session, error) {
	atomic.AddInt32(&c.sessionCalls, 1)
	c.tl.add(event{kind: "session"})
	if c.sessionErr != nil {
		return nil, c.sessionErr
	}
	return &bluesky.Session{AccessJwt: "jwt", DID: "did:plc:test"}, nil
}

func (c *fakeClient) CreatePost(ctx context.Context, session *bluesky.Session, post bluesky.PostRecord) (*bluesky.RecordRef, error) {
	n := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&c.maxInFlight)
		if n <= peak || atomic.CompareAndSwapInt32(&c.maxInFlight, peak, n) {
			break
		}
	}

	c.tl.add(event{kind: "post", text: post.Text})

	c.mu.Lock()
	defer c.mu.Unlock()
	index := len(c.posts)
	c.posts = append(c.posts, post)
	if index == c.failAt {
		return nil, c.postErr
	}
	return &bluesky.RecordRef{
		URI: fmt.Sprintf("at://did:plc:test/app.bsky.feed.post/%d", index),
		CID: fmt.Sprintf("cid%d", index),
	}, nil
}

func (c *fakeClient) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	texts := make([]string, len(c.posts))
	for i, p := range c.posts {
		texts[i] = p.Text
	}
	return texts
}

func recordingWaiter(tl *timeline) schedule.Waiter {
	return schedule.WaiterFunc(func(ctx context.Context, d time.Duration) error {
		tl.add(event{kind: "wait", d: d})
		return ctx.Err()
	})
}

// recordingReporter captures reporter callbacks
type recordingReporter struct {
	mu        sync.Mutex
	calls     []string
	completed *Result
	failed    error
}

func (r *recordingReporter) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recordingReporter) Posting(index, total int, text string) {
	r.add(fmt.Sprintf("posting %d/%d", index+1, total))
}

func (r *recordingReporter) Posted(index, total int, ref bluesky.RecordRef) {
	r.add(fmt.Sprintf("posted %d/%d", index+1, total))
}

func (r *recordingReporter) Skipped(index, total int, text string) {
	r.add(fmt.Sprintf("skipped %d/%d", index+1, total))
}

func (r *recordingReporter) Waiting(index int, next time.Time, interval time.Duration) {
	r.add(fmt.Sprintf("waiting %d", index+1))
}

func (r *recordingReporter) Completed(result *Result) {
	r.add("completed")
	r.completed = result
}

func (r *recordingReporter) Failed(err error) {
	r.add("failed")
	r.failed = err
}

func items(contents ...string) []posts.Item {
	list := make([]posts.Item, len(contents))
	for i, c := range contents {
		list[i] = posts.Item{Content: c}
	}
	return list
}

var testCreds = Credentials{Identifier: "bot.bsky.social", Password: "secret"}

func newTestPublisher(client Client, tl *timeline, opts Options) *Publisher {
	if opts.Interval == 0 {
		opts.Interval = time.Hour
	}
	if opts.Waiter == nil {
		opts.Waiter = recordingWaiter(tl)
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger()
	}
	return New(client, opts)
}

func TestNewDefaults(t *testing.T) {
	p := New(newFakeClient(&timeline{}), Options{Logger: logger.NewTestLogger()})

	assert.Equal(t, DefaultInterval, p.interval)
	assert.Equal(t, richtext.ModePlain, p.composer.Mode)
	assert.NotNil(t, p.Posted())
	assert.Equal(t, StateIdle, p.State())
	assert.Empty(t, p.History())
}

func TestRunSubmitsInOrderWithWaitsBetween(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	reporter := &recordingReporter{}
	p := newTestPublisher(client, tl, Options{Interval: 90 * time.Minute, Reporter: reporter})

	result, err := p.Run(context.Background(), testCreds, items("one", "two", "three"))
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two", "three"}, client.texts())
	assert.Equal(t, []string{"session", "post", "wait", "post", "wait", "post"}, tl.kinds())
	for _, e := range tl.events {
		if e.kind == "wait" {
			assert.Equal(t, 90*time.Minute, e.d)
		}
	}

	assert.Equal(t, int32(1), client.maxInFlight)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Submitted)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "cid2", result.Records[2].CID)
	assert.NotEmpty(t, result.RunID)

	assert.Equal(t, StateCompleted, p.State())
	assert.Equal(t, []string{
		"posting 1/3", "posted 1/3",
		"waiting 2", "posting 2/3", "posted 2/3",
		"waiting 3", "posting 3/3", "posted 3/3",
		"completed",
	}, reporter.calls)
	assert.Same(t, result, reporter.completed)
}

func TestRunSkipsDuplicateWithoutNetworkCall(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	reporter := &recordingReporter{}
	p := newTestPublisher(client, tl, Options{Reporter: reporter})

	result, err := p.Run(context.Background(), testCreds, items("hello", "hello", "world"))
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "world"}, client.texts())
	assert.Equal(t, []string{"session", "post", "wait", "post"}, tl.kinds())
	assert.Equal(t, 2, result.Submitted)
	assert.Equal(t, 1, result.Skipped)
	assert.Contains(t, reporter.calls, "skipped 2/3")
	assert.Equal(t, []string{"hello", "world"}, p.Posted().Items())
}

func TestRunDuplicateSkipDoesNotWait(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	p := newTestPublisher(client, tl, Options{})

	result, err := p.Run(context.Background(), testCreds, items("same", "same", "same"))
	require.NoError(t, err)

	assert.Equal(t, []string{"session", "post"}, tl.kinds())
	assert.Equal(t, 1, result.Submitted)
	assert.Equal(t, 2, result.Skipped)
}

func TestRunDuplicateKeyIsFinalText(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	p := newTestPublisher(client, tl, Options{
		Composer: richtext.NewComposer(richtext.ModeHashtag, "#news"),
	})

	result, err := p.Run(context.Background(), testCreds, items("update", "update #news", "update"))
	require.NoError(t, err)

	// The third item repeats the first once the hashtag is appended
	assert.Equal(t, []string{"update #news", "update #news #news"}, client.texts())
	assert.Equal(t, 1, result.Skipped)
}

func TestRunHashtagModeAttachesFacets(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	p := newTestPublisher(client, tl, Options{
		Composer: richtext.NewComposer(richtext.ModeHashtag, "#bot"),
	})

	_, err := p.Run(context.Background(), testCreds, items("café"))
	require.NoError(t, err)

	require.Len(t, client.posts, 1)
	post := client.posts[0]
	assert.Equal(t, "café #bot", post.Text)
	require.Len(t, post.Facets, 1)
	assert.Equal(t, bluesky.Index{ByteStart: 6, ByteEnd: 10}, post.Facets[0].Index)
	assert.Equal(t, bluesky.PostCollection, post.Type)
}

func TestRunPlainModeHasNoFacets(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	p := newTestPublisher(client, tl, Options{})

	_, err := p.Run(context.Background(), testCreds, items("hello #world"))
	require.NoError(t, err)

	require.Len(t, client.posts, 1)
	assert.Equal(t, "hello #world", client.posts[0].Text)
	assert.Empty(t, client.posts[0].Facets)
}

func TestRunSingleItemHasNoWait(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	p := newTestPublisher(client, tl, Options{})

	result, err := p.Run(context.Background(), testCreds, items("only"))
	require.NoError(t, err)

	assert.Equal(t, []string{"session", "post"}, tl.kinds())
	assert.Equal(t, 1, result.Submitted)
	assert.Equal(t, StateCompleted, p.State())
}

func TestRunEmptyList(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	p := newTestPublisher(client, tl, Options{})

	result, err := p.Run(context.Background(), testCreds, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"session"}, tl.kinds())
	assert.Equal(t, 0, result.Submitted)
	assert.Equal(t, StateCompleted, p.State())
}

func TestRunAuthFailureSubmitsNothing(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	client.sessionErr = &errors.Error{Type: errors.ErrorTypeAuth, Message: "Invalid identifier or password", Code: 401}
	reporter := &recordingReporter{}
	log := logger.NewTestLogger()
	p := newTestPublisher(client, tl, Options{Reporter: reporter, Logger: log})

	result, err := p.Run(context.Background(), testCreds, items("a", "b"))
	require.Error(t, err)

	assert.Empty(t, client.texts())
	assert.Equal(t, []string{"session"}, tl.kinds())
	assert.Equal(t, errors.ErrorTypeAuth, errors.TypeOf(err))
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Equal(t, 0, result.Submitted)
	assert.Equal(t, StateFailed, p.State())
	assert.Equal(t, []string{"failed"}, reporter.calls)
	assert.ErrorIs(t, reporter.failed, client.sessionErr)

	assert.True(t, log.HasError())
	failed := log.GetMessagesByLevel("ERROR")[0]
	assert.Equal(t, "remote_rejection", failed.Fields["category"])
	assert.Equal(t, result.RunID, failed.Fields["run_id"])
}

func TestRunSubmissionFailureStopsRun(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	client.failAt = 1
	client.postErr = &errors.Error{Type: errors.ErrorTypeRejected, Message: "InvalidRequest", Code: 400}
	p := newTestPublisher(client, tl, Options{})

	result, err := p.Run(context.Background(), testCreds, items("a", "b", "c"))
	require.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, client.texts())
	assert.Equal(t, 1, result.Submitted)
	assert.Contains(t, err.Error(), "failed to publish post 2")
	assert.True(t, errors.IsRemoteRejection(err))
	assert.Equal(t, StateFailed, p.State())

	// A failed text is not recorded as posted
	assert.Equal(t, []string{"a"}, p.Posted().Items())
}

func TestRunWaitInterrupted(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	waiter := schedule.WaiterFunc(func(ctx context.Context, d time.Duration) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	p := newTestPublisher(client, tl, Options{Waiter: waiter})

	result, err := p.Run(ctx, testCreds, items("a", "b"))
	require.Error(t, err)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Submitted)
	assert.Equal(t, []string{"a"}, client.texts())
	assert.Equal(t, StateFailed, p.State())
}

func TestRunPreSeededPostedSet(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	posted := dedup.NewPostedSet("already")
	p := newTestPublisher(client, tl, Options{Posted: posted})

	result, err := p.Run(context.Background(), testCreds, items("already", "fresh"))
	require.NoError(t, err)

	assert.Equal(t, []string{"fresh"}, client.texts())
	assert.Equal(t, 1, result.Skipped)
	assert.Same(t, posted, p.Posted())
	assert.Equal(t, []string{"already", "fresh"}, posted.Items())
}

func TestRunUsesClockForCreatedAt(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	p := newTestPublisher(client, tl, Options{Now: func() time.Time { return fixed }})

	_, err := p.Run(context.Background(), testCreds, items("x"))
	require.NoError(t, err)

	require.Len(t, client.posts, 1)
	assert.Equal(t, "2024-05-06T07:08:09.000Z", client.posts[0].CreatedAt)
}

func TestHistory(t *testing.T) {
	tl := &timeline{}
	client := newFakeClient(tl)
	p := newTestPublisher(client, tl, Options{})

	_, err := p.Run(context.Background(), testCreds, items("a", "a", "b"))
	require.NoError(t, err)

	var got []string
	for _, tr := range p.History() {
		got = append(got, fmt.Sprintf("%s(%d)", tr.State, tr.Index))
	}
	assert.Equal(t, []string{
		"authenticating(-1)",
		"publishing(0)",
		"publishing(1)",
		"waiting(0)",
		"publishing(2)",
		"completed(3)",
	}, got)
	assert.True(t, p.State().Terminal())
	assert.False(t, StateWaiting.Terminal())
}

func TestRunLogsRunID(t *testing.T) {
	tl := &timeline{}
	log := logger.NewTestLogger()
	p := newTestPublisher(newFakeClient(tl), tl, Options{Logger: log})

	result, err := p.Run(context.Background(), testCreds, items("a"))
	require.NoError(t, err)

	msgs := log.GetMessages()
	require.NotEmpty(t, msgs)
	for _, m := range msgs {
		assert.Equal(t, result.RunID, m.Fields["run_id"], m.Message)
	}
	assert.True(t, log.HasMessage("Publish run completed"))
}
