package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

const sentinelTTL = 10 * time.Second

// Client is the application-facing cache. It wraps a Store, records
// performance metrics and degrades gracefully when the store fails:
// reads turn into misses, writes and deletes return errors that callers
// are free to ignore.
//
// A single Client is meant to be created at process start and shared.
// All methods are safe for concurrent use. The client makes at most one
// store attempt per call and never retries.
type Client struct {
	store   Store
	opts    *clientOptions
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
	metrics counters

	probedAt  atomic.Int64
	available atomic.Bool
}

// NewClient creates a Client over store.
//
// Example:
//
//	client := cache.NewClient(cache.NewRedis(rdb),
//	    cache.WithLogger(log),
//	    cache.WithDefaultTTL(10*time.Minute),
//	)
func NewClient(store Store, opts ...ClientOption) *Client {
	o := defaultClientOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Client{
		store:  store,
		opts:   o,
		logger: o.logger,
	}

	if o.breaker != nil {
		settings := *o.breaker
		if settings.IsSuccessful == nil {
			settings.IsSuccessful = func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound)
			}
		}
		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}

	return c
}

// Store returns the underlying store.
func (c *Client) Store() Store {
	return c.store
}

// Get returns the raw stored value and whether it was found.
// Store failures are logged, counted and reported as a miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	return c.lookup(ctx, key, nil)
}

// GetValue decodes the value stored under key into V.
// A value that cannot be decoded is logged and counted as an erroring miss.
func GetValue[V any](ctx context.Context, c *Client, key string) (V, bool) {
	var v V

	_, ok := c.lookup(ctx, key, func(data []byte) error {
		return c.opts.marshaler.Unmarshal(data, &v)
	})
	if !ok {
		var zero V
		return zero, false
	}

	return v, true
}

// lookup reads key and records exactly one hit or miss. A non-nil decode
// runs before the outcome is counted, so undecodable data is a miss.
func (c *Client) lookup(ctx context.Context, key string, decode func([]byte) error) ([]byte, bool) {
	start := time.Now()
	defer func() { c.metrics.observe(time.Since(start)) }()

	c.metrics.requests.Add(1)

	data, err := call(c, func() ([]byte, error) {
		return c.store.Get(ctx, key)
	})
	switch {
	case err == nil:
		if decode == nil {
			c.metrics.hits.Add(1)
			return data, true
		}
		if err := decode(data); err != nil {
			c.metrics.misses.Add(1)
			c.metrics.errors.Add(1)
			c.logger.WarnContext(ctx, "cache value decode failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
			return nil, false
		}
		c.metrics.hits.Add(1)
		return data, true
	case errors.Is(err, ErrNotFound):
		c.metrics.misses.Add(1)
	default:
		c.metrics.misses.Add(1)
		c.metrics.errors.Add(1)
		c.logger.WarnContext(ctx, "cache get failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	return nil, false
}

// Set serializes value and stores it under key.
// TTL semantics: positive = expires after duration, zero = client default,
// negative = never expires.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := c.opts.marshaler.Marshal(value)
	if err != nil {
		c.metrics.errors.Add(1)
		return err
	}

	if ttl == 0 {
		ttl = c.opts.defaultTTL
	}

	_, err = call(c, func() (struct{}, error) {
		return struct{}{}, c.store.Set(ctx, key, data, ttl)
	})
	if err != nil {
		c.metrics.errors.Add(1)
		c.logger.WarnContext(ctx, "cache set failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return fmt.Errorf("cache: set %q: %w", key, err)
	}

	c.metrics.sets.Add(1)
	return nil
}

// Del removes a single key.
func (c *Client) Del(ctx context.Context, key string) error {
	_, err := call(c, func() (struct{}, error) {
		return struct{}{}, c.store.Delete(ctx, key)
	})
	if err != nil {
		c.metrics.errors.Add(1)
		c.logger.WarnContext(ctx, "cache delete failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return fmt.Errorf("cache: delete %q: %w", key, err)
	}

	c.metrics.deletes.Add(1)
	return nil
}

// DelPattern removes every key matching pattern ("*" and "?" wildcards).
// A pattern that matches nothing is a no-op. Stores that cannot enumerate
// keys are skipped with a warning and no error.
func (c *Client) DelPattern(ctx context.Context, pattern string) error {
	lister, ok := c.store.(KeyLister)
	if !ok {
		c.logger.WarnContext(ctx, "cache store does not support key enumeration, skipping pattern delete",
			slog.String("pattern", pattern),
		)
		return nil
	}

	keys, err := call(c, func() ([]string, error) {
		return lister.Keys(ctx, pattern)
	})
	if err != nil {
		c.metrics.errors.Add(1)
		c.logger.WarnContext(ctx, "cache key enumeration failed",
			slog.String("pattern", pattern),
			slog.Any("error", err),
		)
		return fmt.Errorf("cache: list %q: %w", pattern, err)
	}

	if len(keys) == 0 {
		return nil
	}

	_, err = call(c, func() (struct{}, error) {
		return struct{}{}, c.store.Delete(ctx, keys...)
	})
	if err != nil {
		c.metrics.errors.Add(1)
		c.logger.WarnContext(ctx, "cache pattern delete failed",
			slog.String("pattern", pattern),
			slog.Int("keys", len(keys)),
			slog.Any("error", err),
		)
		return fmt.Errorf("cache: delete pattern %q: %w", pattern, err)
	}

	c.metrics.deletes.Add(int64(len(keys)))
	c.logger.DebugContext(ctx, "cache pattern deleted",
		slog.String("pattern", pattern),
		slog.Int("keys", len(keys)),
	)

	return nil
}

// Exists reports whether key holds a value. Store failures report false.
func (c *Client) Exists(ctx context.Context, key string) bool {
	ok, err := call(c, func() (bool, error) {
		return c.store.Has(ctx, key)
	})
	if err != nil {
		c.metrics.errors.Add(1)
		c.logger.WarnContext(ctx, "cache exists check failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}
	return ok
}

// TTL returns the remaining lifetime of key in whole seconds, or -1 when the
// key is missing, has no expiry, the store cannot tell, or the call failed.
func (c *Client) TTL(ctx context.Context, key string) int64 {
	reader, ok := c.store.(TTLReader)
	if !ok {
		return -1
	}

	d, err := call(c, func() (time.Duration, error) {
		return reader.TTL(ctx, key)
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.metrics.errors.Add(1)
			c.logger.WarnContext(ctx, "cache ttl lookup failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
		return -1
	}
	if d < 0 {
		return -1
	}

	return int64(d / time.Second)
}

// IsAvailable performs a set/get/delete round-trip on a unique sentinel key
// and reports whether all three succeeded. A failed round-trip counts as one
// error; a memoized result counts nothing.
func (c *Client) IsAvailable(ctx context.Context) bool {
	if c.opts.probeInterval > 0 {
		last := c.probedAt.Load()
		if last != 0 && time.Since(time.Unix(0, last)) < c.opts.probeInterval {
			return c.available.Load()
		}
	}

	ok := c.probe(ctx)
	if !ok {
		c.metrics.errors.Add(1)
	}
	c.available.Store(ok)
	c.probedAt.Store(time.Now().UnixNano())

	return ok
}

func (c *Client) probe(ctx context.Context) bool {
	key := c.opts.sentinelPrefix + uuid.NewString()
	want := []byte("ok")

	_, err := call(c, func() (struct{}, error) {
		return struct{}{}, c.store.Set(ctx, key, want, sentinelTTL)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "cache unavailable", slog.String("stage", "set"), slog.Any("error", err))
		return false
	}

	got, err := call(c, func() ([]byte, error) {
		return c.store.Get(ctx, key)
	})
	if err != nil || !bytes.Equal(got, want) {
		c.logger.WarnContext(ctx, "cache unavailable", slog.String("stage", "get"), slog.Any("error", err))
		return false
	}

	_, err = call(c, func() (struct{}, error) {
		return struct{}{}, c.store.Delete(ctx, key)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "cache unavailable", slog.String("stage", "delete"), slog.Any("error", err))
		return false
	}

	return true
}

// ConfigureLRUEviction asks the store to evict the least recently used keys
// across the whole keyspace under memory pressure.
func (c *Client) ConfigureLRUEviction(ctx context.Context) error {
	cfg, ok := c.store.(Configurer)
	if !ok {
		return fmt.Errorf("%w: configure eviction", ErrUnsupported)
	}

	_, err := call(c, func() (struct{}, error) {
		return struct{}{}, cfg.ConfigSet(ctx, "maxmemory-policy", PolicyAllKeysLRU)
	})
	if err != nil {
		c.metrics.errors.Add(1)
		c.logger.ErrorContext(ctx, "failed to configure cache eviction policy", slog.Any("error", err))
		return fmt.Errorf("cache: configure eviction: %w", err)
	}

	c.logger.InfoContext(ctx, "cache eviction policy configured", slog.String("policy", PolicyAllKeysLRU))
	return nil
}

// MemoryUsage reports store memory consumption.
func (c *Client) MemoryUsage(ctx context.Context) (MemoryInfo, error) {
	reporter, ok := c.store.(MemoryReporter)
	if !ok {
		return MemoryInfo{}, fmt.Errorf("%w: memory usage", ErrUnsupported)
	}

	info, err := call(c, func() (MemoryInfo, error) {
		return reporter.MemoryUsage(ctx)
	})
	if err != nil {
		c.metrics.errors.Add(1)
		return MemoryInfo{}, fmt.Errorf("cache: memory usage: %w", err)
	}

	return info, nil
}

// WarmCache writes every entry with its own Set. Failures do not stop the
// remaining entries; they are returned joined.
func (c *Client) WarmCache(ctx context.Context, entries []WarmupEntry) error {
	var errs []error
	for _, e := range entries {
		if err := c.Set(ctx, e.Key, e.Value, e.TTL); err != nil {
			errs = append(errs, err)
		}
	}

	c.logger.InfoContext(ctx, "cache warmed",
		slog.Int("entries", len(entries)),
		slog.Int("failed", len(errs)),
	)

	return errors.Join(errs...)
}

// Metrics returns a snapshot of the counters.
func (c *Client) Metrics() Metrics {
	return c.metrics.snapshot()
}

// ResetMetrics zeroes all counters.
func (c *Client) ResetMetrics() {
	c.metrics.reset()
	c.logger.Info("cache metrics reset")
}

// call runs fn through the circuit breaker when one is configured.
func call[T any](c *Client, fn func() (T, error)) (T, error) {
	if c.breaker == nil {
		return fn()
	}

	v, err := c.breaker.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}

	out, _ := v.(T)
	return out, nil
}
