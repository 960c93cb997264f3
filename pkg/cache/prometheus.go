package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes Client metrics to Prometheus. Values are read from the
// client on every scrape, so ResetMetrics shows up as a counter reset.
type Collector struct {
	client *Client

	hits         *prometheus.Desc
	misses       *prometheus.Desc
	sets         *prometheus.Desc
	deletes      *prometheus.Desc
	errors       *prometheus.Desc
	requests     *prometheus.Desc
	responseTime *prometheus.Desc
	hitRate      *prometheus.Desc
}

// NewCollector creates a collector for client under namespace.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	registry.MustRegister(cache.NewCollector(client, "shop"))
func NewCollector(client *Client, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", name), help, nil, nil)
	}

	return &Collector{
		client:       client,
		hits:         desc("hits_total", "Cache lookups that found a value"),
		misses:       desc("misses_total", "Cache lookups that found nothing or failed"),
		sets:         desc("sets_total", "Successful cache writes"),
		deletes:      desc("deletes_total", "Keys deleted from the cache"),
		errors:       desc("errors_total", "Cache store failures"),
		requests:     desc("requests_total", "Cache lookups"),
		responseTime: desc("response_time_milliseconds_total", "Cumulative cache lookup latency"),
		hitRate:      desc("hit_rate_percent", "Hit rate since the last reset"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.sets
	ch <- c.deletes
	ch <- c.errors
	ch <- c.requests
	ch <- c.responseTime
	ch <- c.hitRate
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.client.Metrics()

	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}

	counter(c.hits, float64(m.Hits))
	counter(c.misses, float64(m.Misses))
	counter(c.sets, float64(m.Sets))
	counter(c.deletes, float64(m.Deletes))
	counter(c.errors, float64(m.Errors))
	counter(c.requests, float64(m.TotalRequests))
	counter(c.responseTime, m.TotalResponseTime)
	ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, m.HitRate)
}

var _ prometheus.Collector = (*Collector)(nil)
