package bluesky

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMethodURL(t *testing.T) {
	assert.Equal(t, "https://bsky.social/xrpc/com.atproto.server.createSession", MethodURL(BaseURL, CreateSessionMethod))
	assert.Equal(t, "http://127.0.0.1:8080/xrpc/com.atproto.repo.createRecord", MethodURL("http://127.0.0.1:8080/xrpc/", CreateRecordMethod))
}

func TestSearchURL(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"#bot", "https://bsky.app/search?q=%23bot"},
		{"#café", "https://bsky.app/search?q=%23caf%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchURL(tt.tag))
		})
	}
}

func TestNewPostRecord(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	rec := NewPostRecord("hi", nil, time.Date(2024, 1, 2, 3, 4, 5, 600_000_000, loc))

	assert.Equal(t, PostCollection, rec.Type)
	assert.Equal(t, "hi", rec.Text)
	assert.Nil(t, rec.Facets)
	assert.Equal(t, "2024-01-02T01:04:05.600Z", rec.CreatedAt)
}
