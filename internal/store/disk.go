package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskBackend persists records as JSON files. A zero retention keeps
// records forever; otherwise expired records are removed on read.
type DiskBackend struct {
	dir       string
	retention time.Duration
}

// NewDiskBackend creates a disk backend rooted at dir
func NewDiskBackend(dir string, retention time.Duration) *DiskBackend {
	return &DiskBackend{
		dir:       dir,
		retention: retention,
	}
}

type diskEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"` // Zero means never
}

// Get retrieves a value from disk
func (b *DiskBackend) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(b.path(key))
		return nil, false
	}
	return entry.Data, true
}

// Set stores a value on disk. ttl of zero falls back to the backend
// retention; a zero retention stores without expiry.
func (b *DiskBackend) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = b.retention
	}

	entry := diskEntry{Data: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(b.path(key), data, 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}

// Delete removes a value
func (b *DiskBackend) Delete(key string) error {
	return os.Remove(b.path(key))
}

// Clear removes all stored files
func (b *DiskBackend) Clear() error {
	return os.RemoveAll(b.dir)
}

// path maps a key to a filesystem-safe file name
func (b *DiskBackend) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(b.dir, hex.EncodeToString(hash[:])+".json")
}
