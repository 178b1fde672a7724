package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RetryPolicy controls retry behaviour for transient failures.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64
}

// NoRetry performs every request exactly once. This is the policy the store
// client installs by default; callers opt in to retries explicitly.
var NoRetry = RetryPolicy{MaxRetries: 0}

// DefaultRetryPolicy implements a conservative retry strategy for callers
// that ask for one.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  250 * time.Millisecond,
	MaxDelay:   2 * time.Second,
	Jitter:     0.25,
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithRetryPolicy overrides the retry configuration.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// Client wraps http.Client with base URL resolution, default headers,
// request correlation IDs and an optional retry policy.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	headers     http.Header
	retryPolicy RetryPolicy
}

// Request describes a single outbound request. RawQuery must already be
// encoded the way the remote service expects it.
type Request struct {
	Method       string
	Path         string
	RawQuery     string
	Header       http.Header
	DisableRetry bool
	Body         []byte
}

// NewClient creates a Client for the provided base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("httpx: base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpx: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:     parsed,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		headers:     make(http.Header),
		retryPolicy: NoRetry,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.retryPolicy.MaxRetries < 0 {
		c.retryPolicy.MaxRetries = 0
	}
	if c.retryPolicy.MaxRetries > 0 {
		if c.retryPolicy.BaseDelay <= 0 {
			c.retryPolicy.BaseDelay = DefaultRetryPolicy.BaseDelay
		}
		if c.retryPolicy.MaxDelay <= 0 {
			c.retryPolicy.MaxDelay = DefaultRetryPolicy.MaxDelay
		}
	}
	return c, nil
}

// BaseURL reports the resolved base URL as a string.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do executes the request and returns the response. Non-2xx responses are
// drained and surfaced as *HTTPError.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("httpx: request is nil")
	}
	if req.Method == "" {
		return nil, errors.New("httpx: HTTP method is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fullURL := c.resolve(req.Path, req.RawQuery)
	requestID := uuid.New().String()

	attempt := 0
	backoff := NewBackoff(c.retryPolicy.BaseDelay, c.retryPolicy.MaxDelay, c.retryPolicy.Jitter)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var body io.Reader
		if len(req.Body) > 0 {
			body = bytes.NewReader(req.Body)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
		if err != nil {
			return nil, err
		}

		httpReq.Header = c.headers.Clone()
		if httpReq.Header == nil {
			httpReq.Header = make(http.Header)
		}
		for k, values := range req.Header {
			for _, v := range values {
				httpReq.Header.Add(k, v)
			}
		}
		httpReq.Header.Set("X-Request-ID", requestID)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if !c.shouldRetry(req, attempt, err) {
				return nil, err
			}
		} else if resp.StatusCode >= 400 {
			httpErr := newHTTPError(resp)
			if !c.shouldRetry(req, attempt, httpErr) {
				return nil, httpErr
			}
		} else {
			return resp, nil
		}

		delay := backoff.ForAttempt(attempt)
		attempt++
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) shouldRetry(req *Request, attempt int, err error) bool {
	if req.DisableRetry {
		return false
	}
	if attempt >= c.retryPolicy.MaxRetries {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return err != nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) resolve(path string, rawQuery string) string {
	ref := &url.URL{Path: path, RawQuery: rawQuery}
	if !strings.HasPrefix(ref.Path, "/") {
		ref.Path = "/" + ref.Path
	}
	return c.baseURL.ResolveReference(ref).String()
}

// ReadAllAndClose drains the reader and ensures it is closed.
func ReadAllAndClose(rc io.ReadCloser) ([]byte, error) {
	defer closeBody(rc)
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func closeBody(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}
