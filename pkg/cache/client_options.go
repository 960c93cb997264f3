package cache

import (
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ClientOption configures the Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger         *slog.Logger
	marshaler      Marshaler
	breaker        *gobreaker.Settings
	sentinelPrefix string
	defaultTTL     time.Duration
	probeInterval  time.Duration
}

func defaultClientOptions() *clientOptions {
	return &clientOptions{
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		marshaler:      JSONMarshaler{},
		sentinelPrefix: "cache:availability:",
		defaultTTL:     time.Hour,
		probeInterval:  0,
	}
}

// WithLogger sets the logger used for degraded-path reporting.
// Default: discard.
func WithLogger(l *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDefaultTTL sets the expiration applied when Set is called with a zero TTL.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.defaultTTL = d
	}
}

// WithMarshaler sets the value serializer.
// Default: JSONMarshaler.
func WithMarshaler(m Marshaler) ClientOption {
	return func(o *clientOptions) {
		if m != nil {
			o.marshaler = m
		}
	}
}

// WithCircuitBreaker routes every store call through a circuit breaker.
// While the breaker is open, calls fail immediately with gobreaker.ErrOpenState
// and are handled like any other backend failure. ErrNotFound never counts
// as a failure.
func WithCircuitBreaker(settings gobreaker.Settings) ClientOption {
	return func(o *clientOptions) {
		o.breaker = &settings
	}
}

// WithAvailabilityProbeInterval caches the result of IsAvailable for d.
// Zero probes the store on every call.
// Default: 0.
func WithAvailabilityProbeInterval(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.probeInterval = max(d, 0)
	}
}

// WithSentinelPrefix sets the key prefix used by availability probes.
// Default: "cache:availability:".
func WithSentinelPrefix(prefix string) ClientOption {
	return func(o *clientOptions) {
		if prefix != "" {
			o.sentinelPrefix = prefix
		}
	}
}

// DefaultBreakerSettings returns circuit breaker settings that trip after
// at least minRequests calls with a failure ratio of 0.6 or more.
func DefaultBreakerSettings(name string, logger *slog.Logger) gobreaker.Settings {
	const (
		minRequests      = 10
		failureThreshold = 0.6
	)
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
}
