// Package cache defines the port for short-TTL key-value caching.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys. Implementations may
// evict at any time; callers must treat a miss as "recompute".
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value that expires after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
