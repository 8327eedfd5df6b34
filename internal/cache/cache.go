package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/provider"
)

// Key is a content-addressed cache fingerprint. Identical text, attribute and
// backend configuration always produce the same key, regardless of which
// document instance carried the text and across process restarts.
type Key string

// Fingerprint derives the cache key for one logical extraction.
func Fingerprint(text, attribute, configFingerprint string) Key {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(attribute))
	h.Write([]byte{0})
	h.Write([]byte(configFingerprint))
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// Cache memoizes extraction responses with a time-to-live. Implementations
// are safe for concurrent use from multiple in-flight document pipelines.
// Entries are never mutated, only replaced or expired; a Get on an expired
// entry behaves as a miss and evicts the stale entry.
type Cache interface {
	Get(key Key) (*provider.Response, bool)
	Set(key Key, resp *provider.Response, ttl time.Duration)
	Invalidate(key Key)
}

// New builds the cache backend selected by configuration.
func New(cfg common.CacheConfig) Cache {
	if cfg.Backend == "lru" {
		return NewLRUCache(cfg.MaxEntries, cfg.TTL)
	}
	return NewMemoryCache()
}
