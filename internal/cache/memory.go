package cache

import (
	"sync"
	"time"

	"github.com/yogeshhk/MiningResume/internal/provider"
)

type entry struct {
	resp      *provider.Response
	expiresAt time.Time
}

// MemoryCache is an unbounded in-memory cache with per-entry TTL and lazy
// eviction on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[Key]entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[Key]entry)}
}

func (c *MemoryCache) Get(key Key) (*provider.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.resp, true
}

func (c *MemoryCache) Set(key Key, resp *provider.Response, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{resp: resp, expiresAt: time.Now().Add(ttl)}
}

func (c *MemoryCache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of live plus not-yet-evicted entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CleanupExpired removes expired entries eagerly and reports how many were
// dropped. Callers with long-lived caches may run this periodically.
func (c *MemoryCache) CleanupExpired() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
