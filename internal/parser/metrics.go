package parser

import "sync/atomic"

// Metrics counts provider traffic across every document this service parsed.
// Safe under concurrent attribute extraction.
type Metrics struct {
	providerCalls atomic.Int64
	cacheHits     atomic.Int64
	retries       atomic.Int64
}

func (m *Metrics) ProviderCalls() int64 { return m.providerCalls.Load() }
func (m *Metrics) CacheHits() int64     { return m.cacheHits.Load() }
func (m *Metrics) Retries() int64       { return m.retries.Load() }
