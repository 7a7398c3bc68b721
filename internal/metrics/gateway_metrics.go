package metrics

import (
	"sync/atomic"
	"time"
)

// GatewayMetrics tracks remote fetches and cache behaviour of the data gateway.
type GatewayMetrics struct {
	FetchLatency *Histogram

	Requests         atomic.Uint64
	Errors           atomic.Uint64
	CacheHits        atomic.Uint64
	CacheMisses      atomic.Uint64
	PokedexFailures  atomic.Uint64
	DroppedTypeLabel atomic.Uint64

	startTime time.Time
}

// GatewayStats is a point-in-time snapshot of GatewayMetrics.
type GatewayStats struct {
	FetchLatency     LatencyStats `json:"fetch_latency"`
	Requests         uint64       `json:"requests"`
	Errors           uint64       `json:"errors"`
	CacheHits        uint64       `json:"cache_hits"`
	CacheMisses      uint64       `json:"cache_misses"`
	CacheHitRate     float64      `json:"cache_hit_rate"`   // percentage
	APISuccessRate   float64      `json:"api_success_rate"` // percentage
	PokedexFailures  uint64       `json:"pokedex_failures"`
	DroppedTypeLabel uint64       `json:"dropped_type_labels"`
	Uptime           string       `json:"uptime"`
}

// NewGatewayMetrics creates a new metrics collector.
func NewGatewayMetrics() *GatewayMetrics {
	return &GatewayMetrics{
		FetchLatency: NewHistogram(10000),
		startTime:    time.Now(),
	}
}

// ObserveFetch records one remote call and its outcome.
func (m *GatewayMetrics) ObserveFetch(d time.Duration, err error) {
	m.Requests.Add(1)
	if err != nil {
		m.Errors.Add(1)
	}
	m.FetchLatency.Record(d)
}

// CacheHit counts a lookup served from memory.
func (m *GatewayMetrics) CacheHit() { m.CacheHits.Add(1) }

// CacheMiss counts a lookup that went to the network.
func (m *GatewayMetrics) CacheMiss() { m.CacheMisses.Add(1) }

// Snapshot returns the current statistics.
func (m *GatewayMetrics) Snapshot() *GatewayStats {
	requests := m.Requests.Load()
	errs := m.Errors.Load()
	hits := m.CacheHits.Load()
	misses := m.CacheMisses.Load()

	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}
	successRate := 0.0
	if requests > 0 {
		successRate = float64(requests-errs) / float64(requests) * 100
	}

	return &GatewayStats{
		FetchLatency:     m.FetchLatency.Stats(),
		Requests:         requests,
		Errors:           errs,
		CacheHits:        hits,
		CacheMisses:      misses,
		CacheHitRate:     hitRate,
		APISuccessRate:   successRate,
		PokedexFailures:  m.PokedexFailures.Load(),
		DroppedTypeLabel: m.DroppedTypeLabel.Load(),
		Uptime:           time.Since(m.startTime).Round(time.Second).String(),
	}
}
