package satoken

import (
	"context"
	"time"
)

// Record is a bearer token together with its absolute expiry in epoch
// milliseconds. The expiry is the one this package computed when the token
// was issued, not the identity provider's own lifetime.
type Record struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"exp"`
}

// Valid reports whether the record holds a token that is still usable at the
// given instant.
func (r Record) Valid(now time.Time) bool {
	return r.Token != "" && now.UnixMilli() < r.ExpiresAt
}

// Cache is an optional external store for token records, letting multiple
// Provider instances or process restarts share one token. Get returns
// (nil, nil) when no record is stored. Both methods are best effort: the
// Provider logs and ignores their failures.
type Cache interface {
	Get(ctx context.Context) (*Record, error)
	Set(ctx context.Context, rec Record) error
}
