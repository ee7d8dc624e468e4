// Package cache stores rendered artifacts keyed by everything that affects
// their bytes: tree content, category, selection, style, format and renderer.
//
// Backends implement [Cache]:
//   - [FileCache]: sharded JSON files on local disk, for the CLI
//   - [RedisCache]: shared cache for server instances
//   - [NullCache]: disables caching
//
// [Instrument] wraps any backend so hits, misses and writes reach the
// observability cache hooks. Keys come from a [Keyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}
