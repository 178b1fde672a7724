package arbordb

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Batch dispatches all operations concurrently and waits for every one to
// settle. The call fails with the first error when any operation fails, but
// operations that already succeeded are not rolled back: a batch is a fan-out
// convenience, not a transaction.
func Batch(ctx context.Context, c *Client, ops []Operation) error {
	for i, op := range ops {
		if err := validateOperation(op); err != nil {
			return fmt.Errorf("%w (operation %d)", err, i)
		}
	}

	// A plain errgroup.Group, deliberately without WithContext: a failing
	// operation must not cancel its siblings mid-write.
	var g errgroup.Group
	for _, op := range ops {
		op := op
		g.Go(func() error {
			return dispatchOperation(ctx, c, op)
		})
	}
	return g.Wait()
}

func validateOperation(op Operation) error {
	if strings.Trim(op.Path, "/") == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidOperation)
	}
	switch op.Kind {
	case OpSet, OpUpdate:
		if op.Value == nil {
			return fmt.Errorf("%w: %s requires a value", ErrInvalidOperation, op.Kind)
		}
	case OpDelete:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, op.Kind)
	}
	return nil
}

func dispatchOperation(ctx context.Context, c *Client, op Operation) error {
	switch op.Kind {
	case OpSet:
		return Set(ctx, c, op.Path, op.Value)
	case OpUpdate:
		return Update(ctx, c, op.Path, op.Value)
	case OpDelete:
		return c.Delete(ctx, op.Path)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, op.Kind)
	}
}
