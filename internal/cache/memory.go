package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local Cache backed by go-cache.
//
// The janitor is disabled, so there is no background sweep: an expired entry
// stays in memory until the next read of that exact key removes it. go-cache
// guards its map with a mutex, which gives last-write-wins semantics.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: gocache.New(DefaultTTL, 0),
	}
}

// Get returns the value for key if present and not expired
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, found := m.items.Get(key)
	if !found {
		// go-cache hides expired items without removing them
		m.items.Delete(key)
		return nil, false
	}

	data, ok := value.([]byte)
	if !ok {
		m.items.Delete(key)
		return nil, false
	}
	return data, true
}

// Set stores a copy of value with an absolute expiry of now+ttl
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.items.Set(key, stored, ttl)
}

// Delete removes key unconditionally
func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.items.Delete(key)
}

// Len reports stored entries, including expired ones not yet read
func (m *MemoryCache) Len() int {
	return m.items.ItemCount()
}
