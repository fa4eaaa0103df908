package store

import "time"

// LayeredBackend fronts the disk backend with a memory layer, promoting
// disk hits into memory on read
type LayeredBackend struct {
	memory Backend
	disk   Backend
}

// NewLayeredBackend creates a memory+disk backend
func NewLayeredBackend(memoryTTL time.Duration, diskDir string, diskRetention time.Duration) *LayeredBackend {
	return &LayeredBackend{
		memory: NewMemoryBackend(memoryTTL, 10*time.Minute),
		disk:   NewDiskBackend(diskDir, diskRetention),
	}
}

// Get checks memory first, then disk
func (b *LayeredBackend) Get(key string) ([]byte, bool) {
	if val, found := b.memory.Get(key); found {
		return val, true
	}
	if val, found := b.disk.Get(key); found {
		_ = b.memory.Set(key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores in both layers
func (b *LayeredBackend) Set(key string, value []byte, ttl time.Duration) error {
	if err := b.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return b.disk.Set(key, value, ttl)
}

// Delete removes from both layers
func (b *LayeredBackend) Delete(key string) error {
	_ = b.memory.Delete(key)
	return b.disk.Delete(key)
}

// Clear empties both layers
func (b *LayeredBackend) Clear() error {
	_ = b.memory.Clear()
	return b.disk.Clear()
}
