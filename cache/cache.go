// Package cache holds external link probe results between validation runs,
// so editing a post and re-checking doesn't rehit every referenced site.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/kxue43/tech-blog/models"
)

// entry holds a cached probe result with its creation timestamp.
type entry struct {
	result    *models.LinkResult
	createdAt time.Time
}

// Cache is an in-memory TTL cache for link probe results.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	maxAge     time.Duration
}

// New creates a Cache bounded to maxEntries, with entries valid for maxAge.
// A background goroutine evicts expired entries every 5 minutes.
func New(maxEntries int, maxAge time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the probed URL.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Get retrieves a cached result younger than maxAge. maxAge <= 0 skips
// the lookup entirely. The second return reports a hit.
func (c *Cache) Get(key string, maxAge time.Duration) (*models.LinkResult, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}

	// Copy so callers can set page-specific fields without corrupting
	// the cached value.
	result := *e.result
	return &result, true
}

// Set stores a probe result. If the cache is at capacity, a random entry
// is evicted to make room (map iteration is random in Go).
func (c *Cache) Set(key string, result *models.LinkResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	stored := *result
	c.store[key] = &entry{
		result:    &stored,
		createdAt: time.Now(),
	}
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// cleanupLoop evicts entries older than the configured maxAge every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.maxAge)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
