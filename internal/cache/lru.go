package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/yogeshhk/MiningResume/internal/provider"
)

// LRUCache is a bounded cache for long-running deployments. The TTL is fixed
// at construction (a library constraint); per-call TTLs are ignored.
type LRUCache struct {
	lru *expirable.LRU[Key, *provider.Response]
}

func NewLRUCache(maxEntries int, ttl time.Duration) *LRUCache {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	return &LRUCache{lru: expirable.NewLRU[Key, *provider.Response](maxEntries, nil, ttl)}
}

func (c *LRUCache) Get(key Key) (*provider.Response, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Set(key Key, resp *provider.Response, _ time.Duration) {
	c.lru.Add(key, resp)
}

func (c *LRUCache) Invalidate(key Key) {
	c.lru.Remove(key)
}
