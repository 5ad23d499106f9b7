// Package publisher runs the sequential publish loop.
//
// A run moves through these states:
//
//	idle -> authenticating -> publishing(0) -> waiting(0) -> publishing(1) -> ... -> completed
//	                       \-> failed (from any non-terminal state)
//
// Each item's final text is built by a richtext.Composer and checked against a
// dedup.PostedSet. A duplicate is logged and skipped with no network call and
// no delay. The fixed interval is waited only before a submission that follows
// an earlier successful one, so N submissions incur N-1 waits and the run ends
// right after the last one.
//
// Errors are never retried: the first failure ends the run.
//
//	pub := publisher.New(client, publisher.Options{
//	    Interval: time.Hour,
//	    Composer: richtext.NewComposer(richtext.ModeHashtag, "#bot"),
//	})
//	result, err := pub.Run(ctx, publisher.Credentials{Identifier: id, Password: pw}, items)
package publisher
