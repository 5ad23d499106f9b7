package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "bskybot/pkg/errors"
	"bskybot/pkg/logger"

	"github.com/tidwall/gjson"
)

// Client talks to an XRPC service over HTTPS
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new XRPC client. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = BaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   "bskybot/1.0",
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// CreateSession exchanges credentials for a session
func (c *Client) CreateSession(ctx context.Context, identifier, password string) (*Session, error) {
	c.logger.DebugWithFields("creating session", map[string]interface{}{
		"identifier": identifier,
	})

	body, err := c.call(ctx, CreateSessionMethod, "", createSessionRequest{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		return nil, err
	}

	if err := requireStrings(body, "accessJwt", "did"); err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeSchema,
			Message: fmt.Sprintf("failed to decode session: %v", err),
			Err:     err,
		}
	}

	c.logger.DebugWithFields("session created", map[string]interface{}{
		"did":    session.DID,
		"handle": session.Handle,
	})

	return &session, nil
}

// CreatePost writes a feed post into the session's repository
func (c *Client) CreatePost(ctx context.Context, session *Session, post PostRecord) (*RecordRef, error) {
	if session == nil || session.AccessJwt == "" {
		return nil, errs.New(errs.ErrorTypeAuth, "no session")
	}

	body, err := c.call(ctx, CreateRecordMethod, session.AccessJwt, createRecordRequest{
		Type:       PostCollection,
		Repo:       session.DID,
		Collection: PostCollection,
		Record:     post,
	})
	if err != nil {
		return nil, err
	}

	if err := requireStrings(body, "uri", "cid"); err != nil {
		return nil, err
	}

	var ref RecordRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeSchema,
			Message: fmt.Sprintf("failed to decode record reference: %v", err),
			Err:     err,
		}
	}

	return &ref, nil
}

// call POSTs a JSON body to an XRPC procedure and returns the raw 2xx response body
func (c *Client) call(ctx context.Context, method, token string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to encode request: %v", err),
			Err:     err,
		}
	}

	url := MethodURL(c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeConfig,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Err:     err,
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return nil, err
	}

	return body, nil
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Err:     err,
		}
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	return resp, nil
}

// checkResponseStatus turns a non-2xx response into a typed error, using the
// XRPC error body when the server sent one
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := http.StatusText(resp.StatusCode)
	var xerr xrpcError
	if json.Unmarshal(body, &xerr) == nil && (xerr.Error != "" || xerr.Message != "") {
		message = xerr.Error
		if xerr.Message != "" {
			if message != "" {
				message += ": "
			}
			message += xerr.Message
		}
	}

	return &errs.Error{
		Type:    errs.TypeForStatus(resp.StatusCode),
		Message: message,
		Code:    resp.StatusCode,
	}
}

// requireStrings checks that every path in body holds a non-empty string
func requireStrings(body []byte, paths ...string) error {
	if !gjson.ValidBytes(body) {
		return errs.New(errs.ErrorTypeSchema, "response is not valid JSON")
	}

	for _, path := range paths {
		field := gjson.GetBytes(body, path)
		if !field.Exists() {
			return errs.New(errs.ErrorTypeSchema, fmt.Sprintf("response is missing %q", path))
		}
		if field.Type != gjson.String || field.Str == "" {
			return errs.New(errs.ErrorTypeSchema, fmt.Sprintf("response field %q must be a non-empty string", path))
		}
	}

	return nil
}
