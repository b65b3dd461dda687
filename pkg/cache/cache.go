// Package cache stores rendered export artifacts between CLI runs.
//
// Keys are opaque strings, usually built with [Key] from a namespace and the
// exported content, so a changed project never hits a stale entry.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.Key("svg", dot)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
//
// [NullCache] disables caching without changing call sites.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}
