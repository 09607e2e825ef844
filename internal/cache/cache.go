// Package cache provides the ephemeral key/value store used to avoid repeat
// upstream calls. Entries carry a per-entry TTL; there is no capacity bound and
// no eviction policy beyond expiry.
package cache

import (
	"context"
	"time"
)

// Cache is the injectable cache service.
//
// Get returns the stored value when present and not expired. An expired entry
// is purged on that read and every later Get for the key misses. Delete removes
// unconditionally. Concurrent writers to one key resolve last-write-wins.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// DefaultTTL applies when Set is called with a non-positive ttl
const DefaultTTL = 60 * time.Second

// Nop is a Cache that stores nothing
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Nop) Set(context.Context, string, []byte, time.Duration) {}

func (Nop) Delete(context.Context, string) {}
