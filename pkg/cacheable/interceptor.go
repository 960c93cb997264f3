package cacheable

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/shopcache/pkg/cache"
	"github.com/dmitrymomot/shopcache/pkg/cachekey"
)

// Func is a business operation that may be wrapped with caching or invalidation.
type Func[A, R any] func(ctx context.Context, args A) (R, error)

// Option configures an Interceptor.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	version      string
	writeTimeout time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		version:      cachekey.DefaultVersion,
		writeTimeout: 5 * time.Second,
	}
}

// WithLogger sets the logger for background write and invalidation failures.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWriteTimeout bounds every background cache write and invalidation.
// Default: 5 seconds.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

// WithKeyVersion sets the version used for derived keys when Options.Version
// is empty.
// Default: cachekey.DefaultVersion.
func WithKeyVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.version = v
		}
	}
}

// Interceptor owns the shared state of wrapped operations: the cache client,
// background writes still in flight and the single-flight group.
type Interceptor struct {
	client *cache.Client
	opts   *options
	logger *slog.Logger
	group  singleflight.Group
	wg     sync.WaitGroup
}

// New creates an Interceptor over client.
//
// Example:
//
//	ic := cacheable.New(client, cacheable.WithLogger(log))
//	defer ic.Wait()
func New(client *cache.Client, opts ...Option) *Interceptor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Interceptor{
		client: client,
		opts:   o,
		logger: o.logger,
	}
}

// Client returns the underlying cache client.
func (ic *Interceptor) Client() *cache.Client {
	return ic.client
}

// Wait blocks until every background write and invalidation has finished.
// Call it during shutdown, or in tests before asserting on cache state.
func (ic *Interceptor) Wait() {
	ic.wg.Wait()
}

// store writes value in the background. The write outlives the caller's
// context and is bounded by the write timeout.
func (ic *Interceptor) store(ctx context.Context, key string, value any, ttl time.Duration) {
	ic.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ic.opts.writeTimeout)
		defer cancel()

		if err := ic.client.Set(ctx, key, value, ttl); err != nil {
			ic.logger.WarnContext(ctx, "failed to cache operation result",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	})
}

// invalidate deletes every pattern concurrently and waits for all of them.
// A failing pattern is logged and does not stop the others.
func (ic *Interceptor) invalidate(ctx context.Context, patterns []string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ic.opts.writeTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, pattern := range patterns {
		wg.Go(func() {
			if err := ic.client.DelPattern(ctx, pattern); err != nil {
				ic.logger.ErrorContext(ctx, "cache invalidation failed",
					slog.String("pattern", pattern),
					slog.Any("error", err),
				)
			}
		})
	}
	wg.Wait()
}

// isNil reports whether v is nil or a nil pointer, map, slice, channel,
// function or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
