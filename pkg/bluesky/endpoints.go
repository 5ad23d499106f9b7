package bluesky

import (
	"net/url"
	"strings"
)

const (
	// BaseURL is the XRPC root of the main Bluesky PDS
	BaseURL = "https://bsky.social/xrpc"

	// CreateSessionMethod exchanges an identifier and password for tokens
	CreateSessionMethod = "com.atproto.server.createSession"

	// CreateRecordMethod writes a record into the caller's repository
	CreateRecordMethod = "com.atproto.repo.createRecord"

	// SearchBaseURL is the web search page hashtag facets link to
	SearchBaseURL = "https://bsky.app/search"
)

// MethodURL joins an XRPC method name onto a base URL
func MethodURL(baseURL, method string) string {
	return strings.TrimRight(baseURL, "/") + "/" + method
}

// SearchURL returns the search link for a hashtag, including its leading '#'
func SearchURL(tag string) string {
	return SearchBaseURL + "?q=" + url.QueryEscape(tag)
}
