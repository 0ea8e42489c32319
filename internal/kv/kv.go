// Package kv provides the key-value store the catalog and account data is
// kept in: an opaque string key mapped to a JSON document, with prefix scan.
// Keys follow the "<type>:<id>" convention (product:..., user:...).
//
// Contract:
//   - Get returns (nil, nil) for a missing key; absence is never an error.
//   - Set overwrites unconditionally, last writer wins.
//   - Delete is idempotent.
//   - GetByPrefix returns entries in no particular order; callers must not
//     depend on insertion or lexical order.
//
// Storage failures wrap ErrStorage; callers translate them at the HTTP
// boundary.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrStorage is wrapped by every error caused by the backing store.
var ErrStorage = errors.New("kv: storage failure")

// Entry is a single key-value pair as returned by prefix scans.
type Entry struct {
	Key   string
	Value []byte
}

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)

	// Incr increments the integer counter at key by 1, creating it at 1 when
	// absent. A non-zero ttl sets or refreshes the counter's expiry. Used by
	// the fixed-window rate limiter.
	Incr(ctx context.Context, key string, ttl time.Duration) (int, error)
}
