// Package bluesky provides a minimal client for the Bluesky XRPC API.
//
// Only the two calls the bot needs are implemented: createSession, which
// exchanges an identifier and app password for a bearer token and DID, and
// createRecord, which writes an app.bsky.feed.post record:
//
//	client := bluesky.NewClient(bluesky.BaseURL, 0, log)
//	session, err := client.CreateSession(ctx, "bot.bsky.social", password)
//	if err != nil {
//	    // *errors.Error with Type auth, network, schema, ...
//	}
//	ref, err := client.CreatePost(ctx, session, bluesky.NewPostRecord(text, facets, time.Now()))
//
// Response bodies are checked for the fields the bot relies on before they are
// decoded; a body missing them fails with an ErrorTypeSchema error rather than
// yielding empty values.
package bluesky
