package arbordb

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Paginate fetches one page of the children of path, ordered by key. Forward
// iteration (reverse=false) walks keys ascending; reverse iteration walks
// them descending, most recent push keys first. cursor resumes iteration
// exclusively after (or before, when reverse) the given key; pass "" for the
// first page.
//
// The page is detected as non-final by fetching pageSize+1 items: when the
// store returns more than pageSize entries, HasMore is set and the overshoot
// entry is dropped, so no separate count query is needed.
func Paginate[T any](ctx context.Context, c *Client, path string, pageSize int, cursor string, reverse bool) (*Page[T], error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive", ErrInvalidQuery)
	}

	q := QueryOptions{OrderBy: OrderByKey}
	if reverse {
		q.LimitToLast = pageSize + 1
		if cursor != "" {
			q.EndBefore = cursor
		}
	} else {
		q.LimitToFirst = pageSize + 1
		if cursor != "" {
			q.StartAfter = cursor
		}
	}

	entries, err := c.queryOrdered(ctx, path, q)
	if err != nil {
		return nil, err
	}

	// The store answers limitToLast windows in ascending key order too, so a
	// reverse page must be flipped before trimming the overshoot.
	if reverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	hasMore := len(entries) > pageSize
	if hasMore {
		entries = entries[:pageSize]
	}

	items, err := decodeEntries[T](entries)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Items: items, HasMore: hasMore}
	if len(items) > 0 {
		page.PrevCursor = items[0].Key
		page.NextCursor = items[len(items)-1].Key
	}
	return page, nil
}

// PaginateWithCount is Paginate plus an independent Count of the whole node,
// fetched concurrently. The count covers all children, not the paginated
// window.
func PaginateWithCount[T any](ctx context.Context, c *Client, path string, pageSize int, cursor string, reverse bool) (*PageWithCount[T], error) {
	var (
		page  *Page[T]
		total int
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		page, err = Paginate[T](ctx, c, path, pageSize, cursor, reverse)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = c.Count(ctx, path)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PageWithCount[T]{Page: *page, Total: total}, nil
}
