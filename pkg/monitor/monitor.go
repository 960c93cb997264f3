package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/shopcache/pkg/cache"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Recommendation thresholds. Rates are percentages.
const (
	LowHitRate         = 50.0
	ModerateHitRate    = 70.0
	HighErrorRate      = 5.0
	SlowResponseTimeMs = 50.0
)

// Recommendations.
const (
	RecommendNotWired   = "No cache requests recorded yet. Caching may not be wired up for hot read paths."
	RecommendReviewKeys = "Hit rate is below 50%. Review cache keys and TTL values."
	RecommendWarming    = "Hit rate is below 70%. Consider warming frequently accessed data."
	RecommendBackend    = "Error rate is above 5%. Check cache backend connectivity."
	RecommendTuning     = "Average response time is above 50ms. Tune cache backend performance."
	RecommendOptimal    = "Cache performance is optimal."
)

// Health is a point-in-time view of the cache.
type Health struct {
	CheckedAt       time.Time         `json:"checked_at"`
	Memory          *cache.MemoryInfo `json:"memory,omitempty"`
	Status          string            `json:"status"`
	MemoryError     string            `json:"memory_error,omitempty"`
	Recommendations []string          `json:"recommendations"`
	Metrics         cache.Metrics     `json:"metrics"`
	Available       bool              `json:"available"`
}

// Report is a health snapshot with a human-readable summary.
type Report struct {
	Summary string `json:"summary"`
	Health  Health `json:"health"`
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service derives health, recommendations and reports from the cache client.
type Service struct {
	client *cache.Client
	logger *slog.Logger

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewService creates a monitoring service for client.
func NewService(client *cache.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the client counters unmodified.
func (s *Service) Metrics() cache.Metrics {
	return s.client.Metrics()
}

// Reset zeroes the client counters.
func (s *Service) Reset() {
	s.client.ResetMetrics()
}

// Health checks availability and memory usage and derives recommendations.
// A memory usage failure is reported in the result, not returned.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{
		CheckedAt: time.Now().UTC(),
		Available: s.client.IsAvailable(ctx),
		Metrics:   s.client.Metrics(),
	}

	if mem, err := s.client.MemoryUsage(ctx); err != nil {
		h.MemoryError = err.Error()
	} else {
		h.Memory = &mem
	}

	h.Recommendations = Recommendations(h.Metrics)
	h.Status = status(h)

	return h
}

// Report builds a health snapshot with a multi-line summary.
func (s *Service) Report(ctx context.Context) Report {
	h := s.Health(ctx)
	return Report{
		Summary: summary(h),
		Health:  h,
	}
}

// Healthcheck returns a readiness check that fails while the cache is unavailable.
func (s *Service) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if !s.client.IsAvailable(ctx) {
			return ErrUnavailable
		}
		return nil
	}
}

// Start logs metrics and checks health every interval until Stop.
// Starting again replaces the running monitor.
func (s *Service) Start(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	s.ticker, s.done = ticker, done

	s.wg.Go(func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	})

	s.logger.Info("cache monitoring started", slog.Duration("interval", interval))
	return nil
}

// Stop halts periodic monitoring. It is safe to call when not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopLocked() {
		s.logger.Info("cache monitoring stopped")
	}
}

// stopLocked stops the running monitor and waits for its goroutine.
// Caller must hold the mutex.
func (s *Service) stopLocked() bool {
	if s.ticker == nil {
		return false
	}

	s.ticker.Stop()
	close(s.done)
	s.wg.Wait()
	s.ticker, s.done = nil, nil

	return true
}

// Running reports whether periodic monitoring is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

func (s *Service) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h := s.Health(ctx)
	level := slog.LevelInfo
	if h.Status != StatusHealthy {
		level = slog.LevelWarn
	}

	s.logger.Log(ctx, level, "cache status",
		slog.String("status", h.Status),
		slog.Bool("available", h.Available),
		slog.Int64("requests", h.Metrics.TotalRequests),
		slog.Float64("hit_rate", h.Metrics.HitRate),
		slog.Float64("avg_response_ms", h.Metrics.AvgResponseTime),
		slog.Int64("errors", h.Metrics.Errors),
	)
}

// Recommendations derives operator advice from metrics.
//
// No requests yields only the not-wired-up advice, or the backend advice
// when errors were recorded without any request. Otherwise at most one
// hit-rate advice is given (below 50% takes precedence over below 70%),
// followed by error-rate and latency advice. Without any advice the cache
// is reported optimal.
func Recommendations(m cache.Metrics) []string {
	if m.TotalRequests == 0 {
		if m.Errors > 0 {
			return []string{RecommendBackend}
		}
		return []string{RecommendNotWired}
	}

	var out []string
	switch {
	case m.HitRate < LowHitRate:
		out = append(out, RecommendReviewKeys)
	case m.HitRate < ModerateHitRate:
		out = append(out, RecommendWarming)
	}
	if m.ErrorRate() > HighErrorRate {
		out = append(out, RecommendBackend)
	}
	if m.AvgResponseTime > SlowResponseTimeMs {
		out = append(out, RecommendTuning)
	}

	if len(out) == 0 {
		return []string{RecommendOptimal}
	}
	return out
}

func status(h Health) string {
	switch {
	case !h.Available:
		return StatusUnhealthy
	case h.Metrics.ErrorRate() > HighErrorRate:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

func summary(h Health) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Cache status: %s (available: %t)\n", h.Status, h.Available)
	fmt.Fprintf(&b, "Requests: %d, hits: %d, misses: %d, hit rate: %.2f%%\n",
		h.Metrics.TotalRequests, h.Metrics.Hits, h.Metrics.Misses, h.Metrics.HitRate)
	fmt.Fprintf(&b, "Sets: %d, deletes: %d, errors: %d (%.2f%%)\n",
		h.Metrics.Sets, h.Metrics.Deletes, h.Metrics.Errors, h.Metrics.ErrorRate())
	fmt.Fprintf(&b, "Average response time: %.2fms\n", h.Metrics.AvgResponseTime)

	switch {
	case h.Memory != nil:
		fmt.Fprintf(&b, "Memory: %s used, eviction policy %s\n", h.Memory.UsedHuman, h.Memory.Policy)
	case h.MemoryError != "":
		fmt.Fprintf(&b, "Memory: unavailable (%s)\n", h.MemoryError)
	}

	b.WriteString("Recommendations:\n")
	for _, r := range h.Recommendations {
		fmt.Fprintf(&b, "  - %s\n", r)
	}

	return b.String()
}
