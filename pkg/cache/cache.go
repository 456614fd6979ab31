// Package cache stores downloaded feeds between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON entries under a directory, used by the CLI
//     (~/.cache/transitgit by default)
//   - [RedisCache]: a shared Redis instance, for machines that build from
//     the same remote feeds
//   - [NullCache]: caching disabled (--no-cache)
//
// Keys are built by a [Keyer] so every backend sees the same layout, and
// [Instrument] reports hits and misses to the observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of 0 in Set keeps the entry until it is deleted.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live values.
const (
	// TTLFeed is how long a downloaded feed is reused. Agencies publish
	// static feeds at most daily.
	TTLFeed = 24 * time.Hour

	// TTLHTTP is the default for other HTTP responses.
	TTLHTTP = time.Hour
)
