// Package cache stores raw SPARQL result documents keyed by endpoint and query text.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores result bodies
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// QueryKey derives the cache key of a query sent to an endpoint
func QueryKey(endpoint, query string) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write([]byte(query))
	return "mentions:v1:" + hex.EncodeToString(h.Sum(nil))
}
