package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Histogram tracks a distribution of durations and calculates percentiles.
type Histogram struct {
	samples []float64 // milliseconds
	mu      sync.RWMutex
	maxSize int
}

// LatencyStats summarises a histogram in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// NewHistogram creates a histogram keeping at most maxSize samples.
// When maxSize is exceeded, the oldest samples are dropped.
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Histogram{
		samples: make([]float64, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record adds a duration sample.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, float64(d.Microseconds())/1000.0)

	if len(h.samples) > h.maxSize {
		// Drop the oldest 20% at once to avoid trimming on every record.
		h.samples = h.samples[h.maxSize/5:]
	}
}

// Count returns the number of samples.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Percentile returns the value at p (0-100) with linear interpolation.
func (h *Histogram) Percentile(p float64) float64 {
	return percentile(h.sorted(), p)
}

// Stats computes mean, percentiles and extremes from one snapshot.
func (h *Histogram) Stats() LatencyStats {
	sorted := h.sorted()
	if len(sorted) == 0 {
		return LatencyStats{}
	}

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return LatencyStats{
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

func (h *Histogram) sorted() []float64 {
	h.mu.RLock()
	out := make([]float64, len(h.samples))
	copy(out, h.samples)
	h.mu.RUnlock()

	sort.Float64s(out)
	return out
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}
