// Package cache provides key-value caching infrastructure with TTL support.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is a TTL key-value cache. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the cached value for key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key with the given TTL. A zero TTL means
	// the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Del removes keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error
	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
	// Close releases resources held by the store.
	Close() error
}
