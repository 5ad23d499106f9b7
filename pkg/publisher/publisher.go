package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bskybot/pkg/bluesky"
	"bskybot/pkg/dedup"
	errs "bskybot/pkg/errors"
	"bskybot/pkg/logger"
	"bskybot/pkg/posts"
	"bskybot/pkg/richtext"
	"bskybot/pkg/schedule"

	"github.com/google/uuid"
)

// DefaultInterval is the delay between consecutive submissions
const DefaultInterval = time.Hour

// Credentials identify the account a run posts as
type Credentials struct {
	Identifier string
	Password   string
}

// Options configure a Publisher. Zero values fall back to defaults.
type Options struct {
	Interval time.Duration
	Composer *richtext.Composer
	Posted   *dedup.PostedSet
	Waiter   schedule.Waiter
	Reporter Reporter
	Logger   logger.Logger
	Now      func() time.Time
}

// Result summarizes a run
type Result struct {
	RunID     string
	Total     int
	Submitted int
	Skipped   int
	Records   []bluesky.RecordRef
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns how long the run took
func (r *Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Publisher posts a list of items one at a time with a fixed delay between
// successful submissions
type Publisher struct {
	client   Client
	interval time.Duration
	composer *richtext.Composer
	posted   *dedup.PostedSet
	waiter   schedule.Waiter
	reporter Reporter
	baseLog  logger.Logger
	logger   logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	state   State
	history []Transition
}

// New creates a Publisher
func New(client Client, opts Options) *Publisher {
	p := &Publisher{
		client:   client,
		interval: opts.Interval,
		composer: opts.Composer,
		posted:   opts.Posted,
		waiter:   opts.Waiter,
		reporter: opts.Reporter,
		baseLog:  opts.Logger,
		now:      opts.Now,
		state:    StateIdle,
	}

	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.composer == nil {
		p.composer = richtext.NewComposer(richtext.ModePlain, "")
	}
	if p.posted == nil {
		p.posted = dedup.NewPostedSet()
	}
	if p.waiter == nil {
		p.waiter = schedule.NewDelay(0, nil)
	}
	if p.reporter == nil {
		p.reporter = NopReporter{}
	}
	if p.baseLog == nil {
		p.baseLog = logger.GetLogger()
	}
	if p.now == nil {
		p.now = time.Now
	}
	p.logger = p.baseLog

	return p
}

// Posted returns the set of texts submitted so far
func (p *Publisher) Posted() *dedup.PostedSet {
	return p.posted
}

// Run authenticates once and publishes items in order. Any error ends the run
// in StateFailed; the partial result is returned alongside it.
func (p *Publisher) Run(ctx context.Context, creds Credentials, items []posts.Item) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Total:     len(items),
		StartedAt: p.now(),
	}
	p.logger = p.baseLog.WithField("run_id", result.RunID)

	p.logger.InfoWithFields("Starting publish run", map[string]interface{}{
		"items":    len(items),
		"interval": p.interval.String(),
		"mode":     string(p.composer.Mode),
	})

	p.transition(StateAuthenticating, -1)
	session, err := p.client.CreateSession(ctx, creds.Identifier, creds.Password)
	if err != nil {
		return p.fail(result, -1, fmt.Errorf("authentication failed: %w", err))
	}
	p.logger.InfoWithFields("Authenticated", map[string]interface{}{
		"did": session.DID,
	})

	lastSubmitted := -1
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return p.fail(result, i, interrupted(err))
		}

		post := p.composer.Compose(item.Content)

		if p.posted.Has(post.Text) {
			p.transition(StatePublishing, i)
			result.Skipped++
			p.logger.InfoWithFields("Skipping duplicate post", map[string]interface{}{
				"index": i,
				"text":  post.Text,
			})
			p.reporter.Skipped(i, len(items), post.Text)
			continue
		}

		if lastSubmitted >= 0 {
			p.transition(StateWaiting, lastSubmitted)
			next := p.now().Add(p.interval)
			p.logger.DebugWithFields("Waiting before next post", map[string]interface{}{
				"index":    i,
				"interval": p.interval.String(),
				"next_at":  next.Format(time.RFC3339),
			})
			p.reporter.Waiting(i, next, p.interval)
			if err := p.waiter.Wait(ctx, p.interval); err != nil {
				return p.fail(result, i, interrupted(err))
			}
		}

		p.transition(StatePublishing, i)
		p.reporter.Posting(i, len(items), post.Text)

		ref, err := p.client.CreatePost(ctx, session, bluesky.NewPostRecord(post.Text, post.Facets, p.now()))
		if err != nil {
			return p.fail(result, i, fmt.Errorf("failed to publish post %d: %w", i+1, err))
		}

		p.posted.Add(post.Text)
		result.Submitted++
		result.Records = append(result.Records, *ref)
		lastSubmitted = i

		p.logger.InfoWithFields("Post published", map[string]interface{}{
			"index":  i,
			"uri":    ref.URI,
			"facets": len(post.Facets),
		})
		p.reporter.Posted(i, len(items), *ref)
		logger.LogPublishProgress(p.logger, i+1, len(items), result.Submitted, result.Skipped)
	}

	p.transition(StateCompleted, len(items))
	result.EndedAt = p.now()
	p.logger.InfoWithFields("Publish run completed", map[string]interface{}{
		"submitted": result.Submitted,
		"skipped":   result.Skipped,
		"duration":  result.Duration().String(),
	})
	p.reporter.Completed(result)

	return result, nil
}

// fail moves to StateFailed and reports err
func (p *Publisher) fail(result *Result, index int, err error) (*Result, error) {
	p.transition(StateFailed, index)
	result.EndedAt = p.now()

	p.logger.WithError(err).ErrorWithFields("Publish run failed", map[string]interface{}{
		"index":      index,
		"submitted":  result.Submitted,
		"skipped":    result.Skipped,
		"error_type": string(errs.TypeOf(err)),
		"category":   string(errs.CategoryOf(err)),
	})
	p.reporter.Failed(err)

	return result, err
}

func interrupted(err error) error {
	return fmt.Errorf("publishing interrupted: %w", err)
}
