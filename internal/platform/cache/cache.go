// Package cache provides the key/value store behind the product listing cache.
//
// Values are opaque strings (serialized listings). Keys are grouped under a
// namespace so a whole family of entries can be dropped with one pattern.
package cache

import (
	"context"
	"time"
)

// Store is a string key/value cache. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key. A zero ttl means the entry never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Keys lists the keys matching a glob pattern ("api:products*").
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Del removes keys. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
