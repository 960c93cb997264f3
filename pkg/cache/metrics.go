package cache

import (
	"sync/atomic"
	"time"
)

// Metrics is a point-in-time snapshot of the client's counters.
//
// TotalRequests counts Get calls; every Get increments exactly one of
// Hits or Misses. HitRate is a percentage and AvgResponseTime is the mean
// Get latency in milliseconds, both zero when no request was made.
type Metrics struct {
	Hits              int64   `json:"hits"`
	Misses            int64   `json:"misses"`
	Sets              int64   `json:"sets"`
	Deletes           int64   `json:"deletes"`
	Errors            int64   `json:"errors"`
	TotalRequests     int64   `json:"total_requests"`
	TotalResponseTime float64 `json:"total_response_time_ms"`
	HitRate           float64 `json:"hit_rate"`
	AvgResponseTime   float64 `json:"avg_response_time_ms"`
}

// ErrorRate returns errors as a percentage of total requests.
func (m Metrics) ErrorRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.Errors) / float64(m.TotalRequests) * 100
}

// counters holds process-lifetime metrics. Each field is updated atomically;
// a snapshot is not a consistent cut across fields.
type counters struct {
	hits          atomic.Int64
	misses        atomic.Int64
	sets          atomic.Int64
	deletes       atomic.Int64
	errors        atomic.Int64
	requests      atomic.Int64
	responseNanos atomic.Int64
}

func (c *counters) observe(d time.Duration) {
	c.responseNanos.Add(int64(d))
}

func (c *counters) snapshot() Metrics {
	m := Metrics{
		Hits:              c.hits.Load(),
		Misses:            c.misses.Load(),
		Sets:              c.sets.Load(),
		Deletes:           c.deletes.Load(),
		Errors:            c.errors.Load(),
		TotalRequests:     c.requests.Load(),
		TotalResponseTime: nanosToMillis(c.responseNanos.Load()),
	}
	if m.TotalRequests > 0 {
		m.HitRate = float64(m.Hits) / float64(m.TotalRequests) * 100
		m.AvgResponseTime = m.TotalResponseTime / float64(m.TotalRequests)
	}
	return m
}

func (c *counters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
	c.deletes.Store(0)
	c.errors.Store(0)
	c.requests.Store(0)
	c.responseNanos.Store(0)
}

func nanosToMillis(n int64) float64 {
	return float64(n) / float64(time.Millisecond)
}
