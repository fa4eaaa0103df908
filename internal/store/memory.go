package store

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryBackend keeps records in process memory with TTL eviction
type MemoryBackend struct {
	cache *gocache.Cache
}

// NewMemoryBackend creates a memory backend
func NewMemoryBackend(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryBackend {
	return &MemoryBackend{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value
func (b *MemoryBackend) Get(key string) ([]byte, bool) {
	if val, found := b.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a value with the given TTL (0 uses the default)
func (b *MemoryBackend) Set(key string, value []byte, ttl time.Duration) error {
	b.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a value
func (b *MemoryBackend) Delete(key string) error {
	b.cache.Delete(key)
	return nil
}

// Clear removes all values
func (b *MemoryBackend) Clear() error {
	b.cache.Flush()
	return nil
}
