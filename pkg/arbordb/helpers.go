package arbordb

import (
	"context"
	"fmt"
)

// Top returns the n items with the largest values of field, largest first.
// The whole result is materialized; callers choose n accordingly.
func Top[T any](ctx context.Context, c *Client, path string, n int, field string) ([]Item[T], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: item count must be positive", ErrInvalidQuery)
	}
	items, err := Query[T](ctx, c, path, QueryOptions{OrderBy: field, LimitToLast: n})
	if err != nil {
		return nil, err
	}
	// The store answers in ascending order; flip to put the top item first.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// Bottom returns the n items with the smallest values of field, ascending.
func Bottom[T any](ctx context.Context, c *Client, path string, n int, field string) ([]Item[T], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: item count must be positive", ErrInvalidQuery)
	}
	return Query[T](ctx, c, path, QueryOptions{OrderBy: field, LimitToFirst: n})
}

// FindByValue returns every item whose field equals value. The result is
// unbounded; bounding the cardinality is the caller's responsibility.
func FindByValue[T any](ctx context.Context, c *Client, path string, field string, value any) ([]Item[T], error) {
	return Query[T](ctx, c, path, QueryOptions{OrderBy: field, EqualTo: value})
}

// Range returns every item whose field lies in [start, end], both inclusive,
// ascending by field.
func Range[T any](ctx context.Context, c *Client, path string, field string, start, end any) ([]Item[T], error) {
	return Query[T](ctx, c, path, QueryOptions{OrderBy: field, StartAt: start, EndAt: end})
}
