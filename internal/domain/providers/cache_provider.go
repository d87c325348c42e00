package providers

import (
	"context"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// Increment bumps a counter and returns the new value. The expiration is
	// set only when the counter is created, so the window is fixed.
	Increment(ctx context.Context, key string, expirationSeconds int) (int64, error)

	// SetNX stores value only if key is absent and reports whether it did
	SetNX(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error)
}
