// Package store persists report records keyed by report identifier, layered
// over a memory cache and a disk backend.
package store

import "time"

// Backend is the byte-level storage interface shared by the layers
type Backend interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// recordKey namespaces report record keys
func recordKey(id string) string {
	return "veristream:report:v1:" + id
}

// indexKey is where the id index lives
const indexKey = "veristream:report:v1:index"
