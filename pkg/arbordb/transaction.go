package arbordb

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/arbordb/arbordb_sdk_go/internal/httpx"
)

// etagRequestHeader asks the store to include an ETag for the returned value.
const etagRequestHeader = "X-ArborDB-ETag"

// Transaction applies fn to the current value at path and writes the result
// back. current is nil when the node is absent.
//
// This is a plain read-modify-write, not an atomic operation: a concurrent
// writer between the read and the write is silently overwritten. Use
// TransactionWithETag when lost updates matter.
func Transaction[T any](ctx context.Context, c *Client, path string, fn func(current *T) (T, error)) (T, error) {
	var zero T

	current, err := Get[T](ctx, c, path)
	if err != nil {
		return zero, err
	}
	next, err := fn(current)
	if err != nil {
		return zero, fmt.Errorf("arbordb: transaction update: %w", err)
	}
	if err := Set(ctx, c, path, next); err != nil {
		return zero, err
	}
	return next, nil
}

// GetWithETag reads the node at path along with the store's ETag for it. The
// ETag is returned even for absent nodes so it can guard a creating write.
func GetWithETag[T any](ctx context.Context, c *Client, path string) (*T, string, error) {
	header := http.Header{etagRequestHeader: {"true"}}
	data, respHeader, err := c.do(ctx, http.MethodGet, path, QueryOptions{}, nil, header)
	if err != nil {
		return nil, "", err
	}
	value, err := decodeNode[T](data)
	if err != nil {
		return nil, "", err
	}
	return value, respHeader.Get("ETag"), nil
}

// SetIfMatch overwrites the subtree at path only when etag still matches the
// stored value, using the store's native conditional-write primitive. A
// mismatch is reported as ErrPreconditionFailed.
func SetIfMatch[T any](ctx context.Context, c *Client, path string, value T, etag string) error {
	body, err := encodeJSON(value)
	if err != nil {
		return err
	}
	header := http.Header{"if-match": {etag}}
	_, _, err = c.do(ctx, http.MethodPut, path, QueryOptions{}, body, header)
	if err != nil {
		var httpErr *httpx.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusPreconditionFailed {
			return fmt.Errorf("%w: %s", ErrPreconditionFailed, path)
		}
		return err
	}
	return nil
}

// TransactionWithETag is the conditional variant of Transaction: it reads the
// value with its ETag, applies fn and writes back guarded by that ETag. When
// a concurrent writer got there first the call fails with
// ErrPreconditionFailed instead of overwriting; retrying is left to the
// caller.
func TransactionWithETag[T any](ctx context.Context, c *Client, path string, fn func(current *T) (T, error)) (T, error) {
	var zero T

	current, etag, err := GetWithETag[T](ctx, c, path)
	if err != nil {
		return zero, err
	}
	next, err := fn(current)
	if err != nil {
		return zero, fmt.Errorf("arbordb: transaction update: %w", err)
	}
	if err := SetIfMatch(ctx, c, path, next, etag); err != nil {
		return zero, err
	}
	return next, nil
}

// Increment adds delta to the numeric value at path, treating an absent node
// as zero, and returns the new value. It performs one read and one write and
// shares Transaction's race under concurrent writers.
func Increment(ctx context.Context, c *Client, path string, delta float64) (float64, error) {
	return Transaction(ctx, c, path, func(current *float64) (float64, error) {
		if current == nil {
			return delta, nil
		}
		return *current + delta, nil
	})
}
