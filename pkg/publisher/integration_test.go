package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bskybot/pkg/bluesky"
	"bskybot/pkg/errors"
	"bskybot/pkg/logger"
	"bskybot/pkg/richtext"
	"bskybot/pkg/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xrpcServer stands in for a PDS and records createRecord bodies
type xrpcServer struct {
	mu       sync.Mutex
	records  []map[string]interface{}
	sessions int
	badLogin bool
}

func (s *xrpcServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/"+bluesky.CreateSessionMethod, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.sessions++
		bad := s.badLogin
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if bad {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"AuthenticationRequired","message":"Invalid identifier or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"accessJwt":"token","did":"did:plc:bot","handle":"bot.test"}`))
	})
	mux.HandleFunc("/xrpc/"+bluesky.CreateRecordMethod, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.records = append(s.records, body)
		n := len(s.records)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"uri":"at://did:plc:bot/app.bsky.feed.post/%d","cid":"cid%d"}`, n, n)
	})
	return mux
}

func TestIntegrationPublishOverHTTP(t *testing.T) {
	pds := &xrpcServer{}
	server := httptest.NewServer(pds.handler())
	defer server.Close()

	log := logger.NewTestLogger()
	client := bluesky.NewClient(server.URL+"/xrpc", 5*time.Second, log)

	var waits []time.Duration
	waiter := schedule.WaiterFunc(func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	})

	p := New(client, Options{
		Interval: time.Hour,
		Composer: richtext.NewComposer(richtext.ModeHashtag, "#bot"),
		Waiter:   waiter,
		Logger:   log,
	})

	result, err := p.Run(context.Background(), Credentials{Identifier: "bot.test", Password: "pw"}, items("first", "first", "café time"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Submitted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []time.Duration{time.Hour}, waits)
	assert.Equal(t, "at://did:plc:bot/app.bsky.feed.post/2", result.Records[1].URI)

	pds.mu.Lock()
	defer pds.mu.Unlock()
	assert.Equal(t, 1, pds.sessions)
	require.Len(t, pds.records, 2)

	envelope := pds.records[1]
	assert.Equal(t, "app.bsky.feed.post", envelope["$type"])
	assert.Equal(t, "did:plc:bot", envelope["repo"])
	assert.Equal(t, "app.bsky.feed.post", envelope["collection"])

	record := envelope["record"].(map[string]interface{})
	assert.Equal(t, "café time #bot", record["text"])
	_, err = time.Parse(time.RFC3339, record["createdAt"].(string))
	assert.NoError(t, err)

	facets := record["facets"].([]interface{})
	require.Len(t, facets, 1)
	index := facets[0].(map[string]interface{})["index"].(map[string]interface{})
	assert.Equal(t, float64(11), index["byteStart"])
	assert.Equal(t, float64(15), index["byteEnd"])
}

func TestIntegrationBadLogin(t *testing.T) {
	pds := &xrpcServer{badLogin: true}
	server := httptest.NewServer(pds.handler())
	defer server.Close()

	client := bluesky.NewClient(server.URL+"/xrpc", 5*time.Second, logger.NewTestLogger())
	p := New(client, Options{Logger: logger.NewTestLogger()})

	result, err := p.Run(context.Background(), Credentials{Identifier: "bot.test", Password: "wrong"}, items("a", "b"))
	require.Error(t, err)

	assert.Equal(t, errors.ErrorTypeAuth, errors.TypeOf(err))
	assert.Equal(t, 0, result.Submitted)
	assert.Equal(t, StateFailed, p.State())

	pds.mu.Lock()
	defer pds.mu.Unlock()
	assert.Empty(t, pds.records)
}
