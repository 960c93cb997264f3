package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultTimeout = 3 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusDegraded indicates only optional checks failed.
	StatusDegraded = "degraded"
	// StatusUnhealthy indicates a required check failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc is the health check signature shared with redis.Healthcheck
// and monitor.Service.Healthcheck.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Response represents a health check response.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check represents the status of a single health check.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

type config struct {
	logger   *slog.Logger
	optional Checks
	timeout  time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout shared by all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptional adds checks whose failure degrades the response without
// making it unhealthy. A service that keeps working without a dependency,
// such as a cache that falls back to the database, registers it here.
func WithOptional(checks Checks) Option {
	return func(c *config) {
		for name, fn := range checks {
			c.optional[name] = fn
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout:  defaultTimeout,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		optional: Checks{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes required and optional checks in parallel and aggregates
// them into a single response.
func Run(ctx context.Context, required Checks, opts ...Option) *Response {
	return runChecks(ctx, required, newConfig(opts...))
}

func runChecks(ctx context.Context, required Checks, cfg *config) *Response {
	if len(required) == 0 && len(cfg.optional) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Check, len(required)+len(cfg.optional))
	)

	run := func(name string, check CheckFunc, optional bool) {
		result := Check{Status: StatusHealthy, Optional: optional}
		if err := check(ctx); err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = errors.Join(ErrCheckTimeout, err)
			}
			result.Status = StatusUnhealthy
			result.Error = err.Error()
			cfg.logger.WarnContext(ctx, "health check failed",
				slog.String("check", name),
				slog.Bool("optional", optional),
				slog.String("error", err.Error()),
			)
		}

		mu.Lock()
		results[name] = result
		mu.Unlock()
	}

	for name, check := range required {
		wg.Go(func() { run(name, check, false) })
	}
	for name, check := range cfg.optional {
		if _, dup := required[name]; dup {
			continue
		}
		wg.Go(func() { run(name, check, true) })
	}

	wg.Wait()

	return &Response{
		Status: aggregate(results),
		Checks: results,
	}
}

func aggregate(results map[string]Check) string {
	status := StatusHealthy
	for _, c := range results {
		if c.Status == StatusHealthy {
			continue
		}
		if !c.Optional {
			return StatusUnhealthy
		}
		status = StatusDegraded
	}
	return status
}
