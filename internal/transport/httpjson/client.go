// Package httpjson is the shared GET-and-decode client behind every upstream source.
package httpjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JIG555ERA/llm-api/internal/domain"
	"github.com/JIG555ERA/llm-api/internal/metrics"
	"github.com/JIG555ERA/llm-api/internal/ratelimit"
)

const (
	defaultTimeout       = 5 * time.Second
	defaultRetryAttempts = 2
	maxErrorBody         = 512
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client performs rate-limited JSON GET requests against one source.
type Client struct {
	source        string
	httpClient    HTTPDoer
	limiter       *ratelimit.Limiter
	retryAttempts int
	backoff       func(attempt int) time.Duration
	userAgent     string
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		if d > 0 {
			client.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimiter sets the limiter. Nil disables rate limiting.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.limiter = l
	}
}

// WithRetryAttempts sets the total number of attempts for retryable failures.
func WithRetryAttempts(n int) Option {
	return func(client *Client) {
		if n > 0 {
			client.retryAttempts = n
		}
	}
}

// WithBackoff overrides the delay between attempts.
func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(client *Client) {
		if f != nil {
			client.backoff = f
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		client.userAgent = ua
	}
}

// New creates a client for the named source.
func New(source string, opts ...Option) *Client {
	c := &Client{
		source:        source,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		retryAttempts: defaultRetryAttempts,
		backoff:       backoffDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the source name used in errors and metrics.
func (c *Client) Source() string {
	return c.source
}

// GetJSON fetches endpoint and decodes the body into target. Failures are
// *domain.UpstreamError values wrapping domain.ErrUpstreamFetch.
func (c *Client) GetJSON(ctx context.Context, endpoint string, target any) error {
	start := time.Now()
	status, err := c.getWithRetry(ctx, endpoint, target)

	metrics.UpstreamRequestDuration.WithLabelValues(c.source).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues(c.source, statusLabel(status, err)).Inc()

	switch {
	case err == nil:
		return nil
	case status != 0:
		return domain.NewUpstreamStatusError(c.source, status)
	default:
		return domain.NewUpstreamError(c.source, err)
	}
}

func (c *Client) getWithRetry(ctx context.Context, endpoint string, target any) (int, error) {
	var (
		status int
		err    error
	)
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		status, err = c.do(ctx, endpoint, target)
		if err == nil || !isRetryable(status, err) || attempt == c.retryAttempts {
			return status, err
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(c.backoff(attempt)):
		}
	}
	return status, err
}

func (c *Client) do(ctx context.Context, endpoint string, target any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return 0, nil
}

// isRetryable retries timeouts, connection failures and 5xx/429 responses.
func isRetryable(status int, err error) bool {
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if strings.Contains(urlErr.Error(), "connection") {
			return true
		}
	}
	return false
}

func backoffDelay(attempt int) time.Duration {
	// exponential backoff capped at 2 seconds
	delay := time.Duration(1<<uint(attempt-1)) * 250 * time.Millisecond
	return min(delay, 2*time.Second)
}

func statusLabel(status int, err error) string {
	switch {
	case err == nil:
		return "success"
	case status != 0:
		return strconv.Itoa(status)
	default:
		return "error"
	}
}
