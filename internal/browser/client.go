// Package browser talks to the bookmarks bridge: the loopback HTTP
// endpoint a companion WebExtension exposes over the browser's bookmark
// store.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tagmark/internal/model"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultMaxRetries = 3
	defaultRetryWait  = 250 * time.Millisecond
)

// Service is the slice of the bridge the application consumes. Client
// implements it; tests substitute fakes.
type Service interface {
	// List returns every bookmark in the browser store.
	List(ctx context.Context) ([]*model.Bookmark, error)

	// Get retrieves a single bookmark by its platform id. Returns
	// model.ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*model.Bookmark, error)

	// Update sets a bookmark's stored title to rawTitle (tag suffix
	// embedded). Returns model.ErrNotFound for unknown ids and
	// model.ErrUnavailable when the bridge cannot be reached.
	Update(ctx context.Context, id, rawTitle string) error
}

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	retryWait  time.Duration
	logger     *zap.Logger
}

// Option configures the Client.
type Option func(*Client)

// NewClient creates a bridge client for the given base URL. token may be
// empty when the bridge runs without authentication.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		retryWait:  defaultRetryWait,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithMaxRetries sets the maximum number of attempts per request.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryWait sets the base wait between retries.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		c.retryWait = d
	}
}

// WithLogger sets the logger used for retry visibility.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// List returns every bookmark in the browser store, tag suffixes parsed.
func (c *Client) List(ctx context.Context) ([]*model.Bookmark, error) {
	var listResp listResponse
	err := c.doWithRetries(ctx, http.MethodGet, "/api/bookmarks", nil, func(resp *http.Response) error {
		if resp.StatusCode != http.StatusOK {
			return readHTTPError(resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bookmarks := make([]*model.Bookmark, len(listResp.Bookmarks))
	for i, rec := range listResp.Bookmarks {
		bookmarks[i] = rec.toBookmark()
	}
	return bookmarks, nil
}

// Get retrieves a single bookmark by its platform id.
func (c *Client) Get(ctx context.Context, id string) (*model.Bookmark, error) {
	var rec bookmarkRecord
	err := c.doWithRetries(ctx, http.MethodGet, "/api/bookmarks/"+id, nil, func(resp *http.Response) error {
		if resp.StatusCode == http.StatusNotFound {
			return model.ErrNotFound
		}
		if resp.StatusCode != http.StatusOK {
			return readHTTPError(resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.toBookmark(), nil
}

// Update sets a bookmark's stored title.
func (c *Client) Update(ctx context.Context, id, rawTitle string) error {
	data, err := json.Marshal(updateRequest{Title: rawTitle})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	return c.doWithRetries(ctx, http.MethodPatch, "/api/bookmarks/"+id, data, func(resp *http.Response) error {
		if resp.StatusCode == http.StatusNotFound {
			return model.ErrNotFound
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return readHTTPError(resp)
		}
		return nil
	})
}

// doWithRetries performs the request with bounded retries. Transport
// failures and server errors back off exponentially; not-found, client
// errors and context cancellation return immediately.
func (c *Client) doWithRetries(ctx context.Context, method, path string, body []byte, handleResp func(*http.Response) error) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := c.do(ctx, method, url, body, handleResp)
		if err == nil {
			return nil
		}
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		var httpErr HTTPError
		if errors.As(err, &httpErr) && httpErr.IsClientError() {
			return err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		backoff := min(c.retryWait*time.Duration(1<<attempt), 5*time.Second)
		c.logger.Warn("bridge request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", c.maxRetries),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		if err := waitWithContext(ctx, backoff); err != nil {
			return err
		}
		lastErr = err
	}

	if errors.Is(lastErr, model.ErrUnavailable) {
		return lastErr
	}
	return fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// do performs a single HTTP request against the bridge.
func (c *Client) do(ctx context.Context, method, url string, body []byte, handleResp func(*http.Response) error) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		// The bridge only exists while the browser is running; a
		// transport failure means the host capability is absent.
		return fmt.Errorf("%w: %v", model.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResp(resp)
}

// waitWithContext waits for d or until ctx is cancelled.
func waitWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
