package arbordb

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// OrderByKey orders a query by child key.
const OrderByKey = "$key"

// QueryOptions mirrors the store's range-query grammar. Zero values mean
// "unset"; bound values (StartAt, EqualTo, ...) follow the ordering of the
// OrderBy target, so for OrderByKey they are key strings.
type QueryOptions struct {
	OrderBy      string
	LimitToFirst int
	LimitToLast  int
	StartAt      any
	EndAt        any
	StartAfter   any
	EndBefore    any
	EqualTo      any
	Shallow      bool
}

// Validate rejects option combinations the store would answer in surprising
// ways: both limits at once, overlapping bounds, or filters without an
// ordering to apply them to.
func (q QueryOptions) Validate() error {
	if q.LimitToFirst < 0 || q.LimitToLast < 0 {
		return fmt.Errorf("%w: limits must be positive", ErrInvalidQuery)
	}
	if q.LimitToFirst > 0 && q.LimitToLast > 0 {
		return fmt.Errorf("%w: limitToFirst and limitToLast are mutually exclusive", ErrInvalidQuery)
	}
	if q.StartAt != nil && q.StartAfter != nil {
		return fmt.Errorf("%w: startAt and startAfter are mutually exclusive", ErrInvalidQuery)
	}
	if q.EndAt != nil && q.EndBefore != nil {
		return fmt.Errorf("%w: endAt and endBefore are mutually exclusive", ErrInvalidQuery)
	}
	if q.EqualTo != nil && (q.StartAt != nil || q.StartAfter != nil || q.EndAt != nil || q.EndBefore != nil) {
		return fmt.Errorf("%w: equalTo cannot be combined with range bounds", ErrInvalidQuery)
	}
	if q.OrderBy == "" && q.hasFilter() {
		return fmt.Errorf("%w: filtering requires orderBy", ErrInvalidQuery)
	}
	return nil
}

func (q QueryOptions) hasFilter() bool {
	return q.LimitToFirst > 0 || q.LimitToLast > 0 ||
		q.StartAt != nil || q.StartAfter != nil ||
		q.EndAt != nil || q.EndBefore != nil || q.EqualTo != nil
}

func (q QueryOptions) isZero() bool {
	return q.OrderBy == "" && !q.Shallow && !q.hasFilter()
}

// encode validates the options and renders the querystring. String and
// numeric values are individually JSON-encoded, per the store's convention
// for typed query values.
func (q QueryOptions) encode() (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	if q.isZero() {
		return "", nil
	}

	values := url.Values{}
	if q.Shallow {
		values.Set("shallow", "true")
	}
	if q.OrderBy != "" {
		values.Set("orderBy", strconv.Quote(q.OrderBy))
	}
	if q.LimitToFirst > 0 {
		values.Set("limitToFirst", strconv.Itoa(q.LimitToFirst))
	}
	if q.LimitToLast > 0 {
		values.Set("limitToLast", strconv.Itoa(q.LimitToLast))
	}
	bounds := []struct {
		name  string
		value any
	}{
		{"startAt", q.StartAt},
		{"endAt", q.EndAt},
		{"startAfter", q.StartAfter},
		{"endBefore", q.EndBefore},
		{"equalTo", q.EqualTo},
	}
	for _, b := range bounds {
		if b.value == nil {
			continue
		}
		encoded, err := json.Marshal(b.value)
		if err != nil {
			return "", fmt.Errorf("%w: encode %s: %v", ErrInvalidQuery, b.name, err)
		}
		values.Set(b.name, string(encoded))
	}
	return values.Encode(), nil
}
