// Package cache stores basemap tile bytes between renders.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON envelope per key under a sharded directory,
//     the default for CLI use (~/.cache/trafficmap/)
//   - [RedisCache]: a shared cache for several render hosts
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] so that every backend sees the same key space:
//
//	k := cache.NewDefaultKeyer()
//	key := k.TileKey("positron", 15, 16384, 16383)
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Keyer builds cache keys.
type Keyer interface {
	// TileKey returns the key for tile z/x/y of the named provider.
	TileKey(provider string, z, x, y int) string
}

// DefaultKeyer produces keys of the form "tile:<provider>:<z>/<x>/<y>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TileKey implements Keyer.
func (DefaultKeyer) TileKey(provider string, z, x, y int) string {
	return fmt.Sprintf("tile:%s:%d/%d/%d", provider, z, x, y)
}
