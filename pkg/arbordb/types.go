package arbordb

import (
	"context"
	"errors"
)

// TokenSource supplies bearer tokens for outbound requests. Implementations
// must be safe for concurrent use; satoken.Provider satisfies this.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Item is one key/value pair returned from an ordered query.
type Item[T any] struct {
	Key   string
	Value T
}

// Page is one window of a cursor-paginated key-ordered scan. NextCursor is
// the key of the last item (empty when the page is empty) and resumes
// iteration in the same direction; PrevCursor is the key of the first item.
// Cursors are only meaningful for the order they were produced under.
type Page[T any] struct {
	Items      []Item[T]
	NextCursor string
	PrevCursor string
	HasMore    bool
}

// PageWithCount augments a Page with the total number of children under the
// node, counted independently of any filtering.
type PageWithCount[T any] struct {
	Page[T]
	Total int
}

// OpKind tags a batch operation.
type OpKind string

const (
	OpSet    OpKind = "set"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Operation describes one write in a batch. Value is required for OpSet and
// OpUpdate and ignored for OpDelete.
type Operation struct {
	Kind  OpKind
	Path  string
	Value any
}

var (
	// ErrInvalidQuery is returned when query options are rejected at
	// construction, e.g. LimitToFirst combined with LimitToLast.
	ErrInvalidQuery = errors.New("arbordb: invalid query options")
	// ErrPreconditionFailed signals a conditional write whose ETag no longer
	// matches the stored value.
	ErrPreconditionFailed = errors.New("arbordb: precondition failed")
	// ErrInvalidOperation is returned for malformed batch descriptors.
	ErrInvalidOperation = errors.New("arbordb: invalid batch operation")
)
