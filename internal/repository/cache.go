package repository

import (
	"context"
	"strconv"
	"time"
)

// =============================================================================
// Cache Interface
// =============================================================================

// Cache defines the interface for caching operations.
// Implemented in memory for single-node deployments and on Redis otherwise.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX sets a value only if the key doesn't exist.
	// Returns true if the value was set, false if the key already exists.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes values by key.
	Delete(ctx context.Context, keys ...string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Increment atomically increments an integer value, creating it at zero.
	Increment(ctx context.Context, key string, delta int64) (int64, error)
}

// =============================================================================
// Common Cache Keys
// =============================================================================

// CacheKeys generates cache keys for common scenarios.
var CacheKeys = cacheKeys{}

type cacheKeys struct{}

// TimelineGeneration returns the key of the counter bumped on every publish.
func (cacheKeys) TimelineGeneration() string {
	return "cache:timeline:generation"
}

// TimelinePage returns the cache key for one timeline page. Pages of older
// generations are never read again and simply expire.
func (cacheKeys) TimelinePage(generation int64, offset, limit int) string {
	return "cache:timeline:" + strconv.FormatInt(generation, 10) +
		":" + strconv.Itoa(offset) + ":" + strconv.Itoa(limit)
}
