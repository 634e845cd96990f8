package cache

import (
	"context"
	"time"
)

// Cache defines the contract for the cache layer.
// Allows swapping implementations (Redis, in-memory).
type Cache interface {
	// Get fetches data from cache and unmarshals into dest.
	// Returns: (found bool, error)
	// - found = true: cache hit, data unmarshaled into dest
	// - found = false: cache miss, dest untouched
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores data in cache with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// DeletePattern removes all keys matching a glob pattern. Writes use
	// this to invalidate a whole collection's entries at once.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies the connection.
	Ping(ctx context.Context) error
}
