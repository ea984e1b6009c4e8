// Package cache provides a small TTL cache for remote API responses.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// CachedResponse represents a cached API response
type CachedResponse struct {
	Response  string
	Timestamp time.Time
}

// Cache holds responses for a fixed time to live.
type Cache struct {
	ttl     time.Duration
	entries sync.Map
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Key generates a cache key from the request parts
func Key(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached response for key if it has not expired.
func (c *Cache) Get(key string) (string, bool) {
	value, ok := c.entries.Load(key)
	if !ok {
		return "", false
	}
	entry := value.(CachedResponse)
	if time.Since(entry.Timestamp) > c.ttl {
		c.entries.Delete(key)
		return "", false
	}
	return entry.Response, true
}

// Put stores a response under key.
func (c *Cache) Put(key, response string) {
	c.entries.Store(key, CachedResponse{
		Response:  response,
		Timestamp: time.Now(),
	})
}
