package arbordb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbordb/arbordb_sdk_go/pkg/arbordb"
)

func TestIncrementAbsentPath(t *testing.T) {
	client, _ := newTestClient(t)

	v, err := arbordb.Increment(context.Background(), client, "counters/hits", 3)
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)
}

func TestIncrementExistingValue(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, arbordb.Set(ctx, client, "counters/hits", 10))

	v, err := arbordb.Increment(ctx, client, "counters/hits", -4)
	require.NoError(t, err)
	assert.Equal(t, float64(6), v)

	stored, err := arbordb.Get[float64](ctx, client, "counters/hits")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, float64(6), *stored)
}

func TestTransactionPassesCurrentValue(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, arbordb.Set(ctx, client, "posts/a", post{Title: "v1", Score: 1}))

	updated, err := arbordb.Transaction(ctx, client, "posts/a", func(current *post) (post, error) {
		require.NotNil(t, current)
		current.Score++
		return *current, nil
	})
	require.NoError(t, err)
	assert.Equal(t, float64(2), updated.Score)
}

func TestTransactionUpdateErrorAborts(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, arbordb.Set(ctx, client, "posts/a", post{Title: "v1"}))

	boom := errors.New("cannot update")
	_, err := arbordb.Transaction(ctx, client, "posts/a", func(current *post) (post, error) {
		return post{}, boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := arbordb.Get[post](ctx, client, "posts/a")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "v1", stored.Title)
}

func TestTransactionWithETagDetectsConcurrentWriter(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, arbordb.Set(ctx, client, "posts/a", post{Title: "v1"}))

	_, err := arbordb.TransactionWithETag(ctx, client, "posts/a", func(current *post) (post, error) {
		// A concurrent writer lands between the guarded read and the write.
		require.NoError(t, arbordb.Set(ctx, client, "posts/a", post{Title: "intruder"}))
		return post{Title: "v2"}, nil
	})
	require.ErrorIs(t, err, arbordb.ErrPreconditionFailed)

	stored, err := arbordb.Get[post](ctx, client, "posts/a")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "intruder", stored.Title, "the conditional write must not overwrite the intruder")
}

func TestTransactionWithETagHappyPath(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	updated, err := arbordb.TransactionWithETag(ctx, client, "counters/v", func(current *float64) (float64, error) {
		assert.Nil(t, current)
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), updated)
}

func TestSetIfMatchOnMismatch(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, arbordb.Set(ctx, client, "posts/a", post{Title: "v1"}))

	err := arbordb.SetIfMatch(ctx, client, "posts/a", post{Title: "v2"}, "bogus-etag")
	assert.ErrorIs(t, err, arbordb.ErrPreconditionFailed)
}

func TestGetWithETagRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, arbordb.Set(ctx, client, "posts/a", post{Title: "v1"}))

	value, etag, err := arbordb.GetWithETag[post](ctx, client, "posts/a")
	require.NoError(t, err)
	require.NotNil(t, value)
	require.NotEmpty(t, etag)

	require.NoError(t, arbordb.SetIfMatch(ctx, client, "posts/a", post{Title: "v2"}, etag))

	stored, err := arbordb.Get[post](ctx, client, "posts/a")
	require.NoError(t, err)
	assert.Equal(t, "v2", stored.Title)
}
