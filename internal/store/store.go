// Package store defines the associative key-value store the waitlist is built on
// and its adapters: Redis for production and an in-memory twin for tests and
// local development.
//
// Every operation addresses a single key. No multi-key transactions are used.
// SetNX backs the create-if-absent guards and Update backs read-modify-write
// of a single record.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps every failure of the underlying store.
var ErrUnavailable = errors.New("storage unavailable")

// Store is the subset of associative store operations the waitlist needs.
// Get reports found=false for missing or expired keys. A zero ttl means no expiry.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Update runs fn on the current value and stores its result only if key
	// did not change in between, retrying on contention. An error from fn
	// aborts the write and is returned as is. fn may run more than once and
	// must not call back into the store. The key's expiry is kept.
	Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error

	SAdd(ctx context.Context, key, member string) (bool, error)
	SCard(ctx context.Context, key string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}
