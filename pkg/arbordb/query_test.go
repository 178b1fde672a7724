package arbordb

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryOptionsValidate(t *testing.T) {
	cases := []struct {
		name string
		q    QueryOptions
		ok   bool
	}{
		{name: "zero", q: QueryOptions{}, ok: true},
		{name: "shallow only", q: QueryOptions{Shallow: true}, ok: true},
		{name: "order only", q: QueryOptions{OrderBy: OrderByKey}, ok: true},
		{name: "forward window", q: QueryOptions{OrderBy: OrderByKey, LimitToFirst: 3, StartAfter: "a"}, ok: true},
		{name: "both limits", q: QueryOptions{OrderBy: OrderByKey, LimitToFirst: 1, LimitToLast: 1}},
		{name: "negative limit", q: QueryOptions{OrderBy: OrderByKey, LimitToFirst: -1}},
		{name: "startAt and startAfter", q: QueryOptions{OrderBy: OrderByKey, StartAt: "a", StartAfter: "b"}},
		{name: "endAt and endBefore", q: QueryOptions{OrderBy: OrderByKey, EndAt: "a", EndBefore: "b"}},
		{name: "equalTo with range", q: QueryOptions{OrderBy: "age", EqualTo: 3, StartAt: 1}},
		{name: "filter without order", q: QueryOptions{LimitToFirst: 3}},
		{name: "bound without order", q: QueryOptions{StartAt: "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidQuery)
			}
		})
	}
}

func TestQueryOptionsEncode(t *testing.T) {
	q := QueryOptions{
		OrderBy:      "status",
		LimitToFirst: 5,
		StartAt:      "active",
		EndAt:        "active",
	}
	raw, err := q.encode()
	require.NoError(t, err)

	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	// String values travel JSON-encoded, numbers bare.
	assert.Equal(t, `"status"`, values.Get("orderBy"))
	assert.Equal(t, `"active"`, values.Get("startAt"))
	assert.Equal(t, `"active"`, values.Get("endAt"))
	assert.Equal(t, "5", values.Get("limitToFirst"))
}

func TestQueryOptionsEncodeNumericBound(t *testing.T) {
	q := QueryOptions{OrderBy: "age", EqualTo: 21}
	raw, err := q.encode()
	require.NoError(t, err)

	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	assert.Equal(t, "21", values.Get("equalTo"))
	assert.Equal(t, `"age"`, values.Get("orderBy"))
}

func TestQueryOptionsEncodeZeroIsEmpty(t *testing.T) {
	raw, err := QueryOptions{}.encode()
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestQueryOptionsEncodeRejectsInvalid(t *testing.T) {
	_, err := QueryOptions{LimitToFirst: 1, LimitToLast: 1, OrderBy: OrderByKey}.encode()
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
