// Package cache stores pipeline results between runs.
//
// The CLI uses [FileCache] under the user cache directory, the HTTP server
// can share rendered artifacts across instances with [RedisCache], and tests
// or --no-cache runs use [NullCache]. Keys come from a [Keyer] so that every
// backend sees the same key layout.
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind. Catalogs are cheap to regenerate but stable for a
// seed, so they live longest.
const (
	TTLCatalog  = 7 * 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A miss is (nil, false, nil);
// errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
