// Package client is a typed client for the fintrack REST API.
//
// Every call takes the context id it works on explicitly. Mutations are
// announced on the client's own event bus so callers can refresh views that
// depend on the changed entity.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
)

const defaultTimeout = 30 * time.Second

// Client talks to one fintrack server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bus        *events.Bus
	now        func() time.Time
	logger     *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 30s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBus publishes change events on bus instead of a private one.
func WithBus(bus *events.Bus) Option {
	return func(c *Client) { c.bus = bus }
}

// WithClock sets the clock used to date synthesized transactions.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		bus:        events.NewBus(),
		now:        time.Now,
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent(log.ComponentClient)
	return c
}

// Events returns the bus mutations are announced on.
func (c *Client) Events() *events.Bus { return c.bus }

func (c *Client) publish(ctx context.Context, entity events.Entity, action events.Action, contextID, id int64) {
	c.bus.Publish(ctx, events.New(entity, action, contextID, id))
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    []core.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fintrack: %s (status %d)", e.Message, e.StatusCode)
}

// Is lets callers test API errors against the core sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case core.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case core.ErrConflict:
		return e.StatusCode == http.StatusBadRequest && strings.Contains(e.Message, "already exists")
	}
	return false
}

// IsValidation reports whether err is a 400 carrying field details.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && len(apiErr.Details) > 0
}

// do sends one request. in, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error   string            `json:"error"`
			Details []core.FieldError `json:"details"`
		}
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.Details = errBody.Details
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		c.logger.DebugContext(ctx, "API request failed",
			log.FieldMethod, method, log.FieldPath, path, log.FieldStatusCode, resp.StatusCode, log.FieldError, apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		_, err = w.Write(raw)
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func contextQuery(contextID int64) url.Values {
	return url.Values{"context_id": {fmt.Sprint(contextID)}}
}

func idPath(collection string, id int64) string {
	return fmt.Sprintf("/api/%s/%d", collection, id)
}
