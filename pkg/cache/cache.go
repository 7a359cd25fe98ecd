// Package cache stores fetched notebooks and rendered pages.
//
// The [Cache] interface is a small byte-oriented key/value store with
// per-entry TTL. [FileCache] keeps entries on disk for the CLI and the
// server; [NullCache] disables caching. Keys are built by a [Keyer] so that
// every producer and consumer agrees on them.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Default time-to-live values.
const (
	// TTLNotebook applies to notebook bodies fetched over HTTP.
	TTLNotebook = 24 * time.Hour

	// TTLPage applies to rendered HTML pages served by nbenv serve.
	TTLPage = time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as a miss (false, nil), not as an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// NullCache never stores anything. It stands in when caching is disabled
// by config or by --no-cache.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// DefaultDir returns the cache directory: $XDG_CACHE_HOME/nbenv, falling
// back to ~/.cache/nbenv.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "nbenv"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "nbenv"), nil
}
