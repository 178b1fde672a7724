package arbordb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arbordb/arbordb_sdk_go/internal/arborapi"
	"github.com/arbordb/arbordb_sdk_go/internal/httpx"
)

// Client provides access to one ArborDB store.
type Client struct {
	http   *httpx.Client
	tokens TokenSource
	logger zerolog.Logger
}

// RetryPolicy re-exports the transport retry policy for callers opting in to
// retries. The default is no retries: a failed request surfaces immediately.
type RetryPolicy = httpx.RetryPolicy

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	httpOpts []httpx.Option
	tokens   TokenSource
	logger   zerolog.Logger
}

// WithTokenSource authenticates every request with a bearer token from the
// supplied source.
func WithTokenSource(ts TokenSource) Option {
	return func(cfg *clientConfig) { cfg.tokens = ts }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(cfg *clientConfig) {
		cfg.httpOpts = append(cfg.httpOpts, httpx.WithHTTPClient(h))
	}
}

// WithRetryPolicy opts in to transport-level retries for transient failures.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(cfg *clientConfig) {
		cfg.httpOpts = append(cfg.httpOpts, httpx.WithRetryPolicy(policy))
	}
}

// WithHeader adds a default header to every request.
func WithHeader(key, value string) Option {
	return func(cfg *clientConfig) {
		cfg.httpOpts = append(cfg.httpOpts, httpx.WithHeaders(http.Header{key: {value}}))
	}
}

// WithLogger attaches a logger used for debug-level request reporting.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

// New constructs a Client for the referenced store. databaseURL may be a bare
// store identifier or a full URL; see NormalizeDatabaseURL.
func New(databaseURL string, opts ...Option) (*Client, error) {
	base, err := NormalizeDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	cfg := clientConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	hx, err := httpx.NewClient(base, cfg.httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("arbordb: init http client: %w", err)
	}
	return &Client{http: hx, tokens: cfg.tokens, logger: cfg.logger}, nil
}

// BaseURL reports the normalized store base URL.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// do obtains a token, issues one request and returns the response body and
// headers. Non-2xx responses come back as an error carrying the status text
// and response body.
func (c *Client) do(ctx context.Context, method, path string, q QueryOptions, body []byte, header http.Header) ([]byte, http.Header, error) {
	if c == nil || c.http == nil {
		return nil, nil, fmt.Errorf("arbordb: client is nil")
	}

	rawQuery, err := q.encode()
	if err != nil {
		return nil, nil, err
	}

	req := &httpx.Request{
		Method:   method,
		Path:     resourcePath(path),
		RawQuery: rawQuery,
		Header:   header,
	}
	if len(body) > 0 {
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Body = body
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("arbordb: obtain token: %w", err)
		}
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("arbordb request")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		var httpErr *httpx.HTTPError
		if errors.As(err, &httpErr) {
			c.logger.Debug().Int("status", httpErr.StatusCode).
				Str("message", arborapi.ErrorMessage(httpErr.Body)).Msg("arbordb request failed")
		}
		return nil, nil, fmt.Errorf("arbordb: %s %s: %w", method, strings.Trim(path, "/"), err)
	}
	data, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("arbordb: read response for %s %s: %w", method, strings.Trim(path, "/"), err)
	}
	return data, resp.Header, nil
}

func encodeJSON(value any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("arbordb: encode value: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Get reads the node at path and decodes it into T. It returns nil when the
// node is absent.
func Get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	data, _, err := c.do(ctx, http.MethodGet, path, QueryOptions{}, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeNode[T](data)
}

// Set overwrites the subtree at path with value.
func Set[T any](ctx context.Context, c *Client, path string, value T) error {
	body, err := encodeJSON(value)
	if err != nil {
		return err
	}
	_, _, err = c.do(ctx, http.MethodPut, path, QueryOptions{}, body, nil)
	return err
}

// Update merges the top-level fields of partial into the node at path,
// leaving unnamed fields untouched.
func Update[T any](ctx context.Context, c *Client, path string, partial T) error {
	body, err := encodeJSON(partial)
	if err != nil {
		return err
	}
	_, _, err = c.do(ctx, http.MethodPatch, path, QueryOptions{}, body, nil)
	return err
}

// Delete removes the subtree at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, _, err := c.do(ctx, http.MethodDelete, path, QueryOptions{}, nil, nil)
	return err
}

// Push appends value under a store-generated key and returns that key. Keys
// generated by the store sort lexicographically in creation order.
func Push[T any](ctx context.Context, c *Client, path string, value T) (string, error) {
	body, err := encodeJSON(value)
	if err != nil {
		return "", err
	}
	data, _, err := c.do(ctx, http.MethodPost, path, QueryOptions{}, body, nil)
	if err != nil {
		return "", err
	}
	name, err := arborapi.PushName(data)
	if err != nil {
		return "", fmt.Errorf("arbordb: push to %s: %w", strings.Trim(path, "/"), err)
	}
	return name, nil
}

// ListKeys fetches the immediate child keys of path via a shallow query and
// returns them sorted, ascending unless reverse is set.
func (c *Client) ListKeys(ctx context.Context, path string, reverse bool) ([]string, error) {
	data, _, err := c.do(ctx, http.MethodGet, path, QueryOptions{Shallow: true}, nil, nil)
	if err != nil {
		return nil, err
	}

	entries, err := arborapi.DecodeOrdered(data)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	if reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	return keys, nil
}

// Count reports the number of immediate children of path.
func (c *Client) Count(ctx context.Context, path string) (int, error) {
	keys, err := c.ListKeys(ctx, path, false)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// QueryRaw issues a structured query and returns the raw key→value mapping,
// nil when the query matches nothing.
func (c *Client) QueryRaw(ctx context.Context, path string, q QueryOptions) (map[string]json.RawMessage, error) {
	entries, err := c.queryOrdered(ctx, path, q)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return nil, nil
	}
	result := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		result[e.Key] = e.Value
	}
	return result, nil
}

// Query issues a structured query and returns decoded items in the order the
// store answered them, which is ascending over the OrderBy target.
func Query[T any](ctx context.Context, c *Client, path string, q QueryOptions) ([]Item[T], error) {
	entries, err := c.queryOrdered(ctx, path, q)
	if err != nil {
		return nil, err
	}
	return decodeEntries[T](entries)
}

// queryOrdered issues the query and preserves the response's document order.
func (c *Client) queryOrdered(ctx context.Context, path string, q QueryOptions) ([]arborapi.Entry, error) {
	data, _, err := c.do(ctx, http.MethodGet, path, q, nil, nil)
	if err != nil {
		return nil, err
	}
	return arborapi.DecodeOrdered(data)
}

func decodeNode[T any](data []byte) (*T, error) {
	if arborapi.IsNull(data) {
		return nil, nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("arbordb: decode value: %w", err)
	}
	return &value, nil
}

func decodeEntries[T any](entries []arborapi.Entry) ([]Item[T], error) {
	if entries == nil {
		return nil, nil
	}
	items := make([]Item[T], 0, len(entries))
	for _, e := range entries {
		var value T
		if err := json.Unmarshal(e.Value, &value); err != nil {
			return nil, fmt.Errorf("arbordb: decode value for %q: %w", e.Key, err)
		}
		items = append(items, Item[T]{Key: e.Key, Value: value})
	}
	return items, nil
}
