package bluesky

import "time"

const (
	// PostCollection is the NSID of feed posts, used as both record type and collection
	PostCollection = "app.bsky.feed.post"

	// LinkFeatureType marks a facet feature that links its byte range to a URI
	LinkFeatureType = "app.bsky.richtext.facet#link"

	// createdAtLayout matches the millisecond UTC timestamps the official clients send
	createdAtLayout = "2006-01-02T15:04:05.000Z"
)

// Session is the authenticated context returned by createSession
type Session struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt,omitempty"`
	Handle     string `json:"handle,omitempty"`
	DID        string `json:"did"`
}

// Index is a byte range into the UTF-8 encoding of a post's text
type Index struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

// Feature is the rich-text behavior attached to a facet
type Feature struct {
	Type string `json:"$type"`
	URI  string `json:"uri,omitempty"`
}

// Facet annotates a byte range of a post's text
type Facet struct {
	Index    Index     `json:"index"`
	Features []Feature `json:"features"`
}

// PostRecord is the app.bsky.feed.post record payload
type PostRecord struct {
	Type      string  `json:"$type"`
	Text      string  `json:"text"`
	Facets    []Facet `json:"facets,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// NewPostRecord builds a post record stamped with createdAt in UTC
func NewPostRecord(text string, facets []Facet, createdAt time.Time) PostRecord {
	return PostRecord{
		Type:      PostCollection,
		Text:      text,
		Facets:    facets,
		CreatedAt: createdAt.UTC().Format(createdAtLayout),
	}
}

// createSessionRequest is the createSession input body
type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// createRecordRequest is the createRecord envelope
type createRecordRequest struct {
	Type       string     `json:"$type"`
	Repo       string     `json:"repo"`
	Collection string     `json:"collection"`
	Record     PostRecord `json:"record"`
}

// RecordRef identifies a record the service accepted
type RecordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// xrpcError is the error body XRPC servers return with non-2xx statuses
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
