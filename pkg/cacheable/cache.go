package cacheable

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/shopcache/pkg/cache"
	"github.com/dmitrymomot/shopcache/pkg/cachekey"
)

// Options configures read-through caching for one operation.
type Options[A any] struct {
	// Key derives the cache key from the arguments.
	// When nil, the key is generated from Name and the arguments.
	Key func(args A) string

	// Condition decides per call whether the cache is consulted.
	// When nil, every call is cacheable.
	Condition func(args A) bool

	// Name is the key prefix for derived keys, e.g. "ProductService.Get".
	Name string

	// Version overrides the interceptor's key version for derived keys.
	Version string

	// TTL of stored results. Zero uses the client's default TTL.
	TTL time.Duration

	// SkipCache bypasses the cache entirely.
	SkipCache bool

	// SingleFlight collapses concurrent misses for the same key into one
	// call to the wrapped operation.
	SingleFlight bool
}

func (o Options[A]) key(args A, version string) string {
	if o.Key != nil {
		return o.Key(args)
	}
	if o.Version != "" {
		version = o.Version
	}
	return cachekey.Generate(o.Name, cachekey.FromArgs(args), cachekey.WithVersion(version))
}

// WithCache wraps fn with read-through caching.
//
// A hit returns the stored value without calling fn. A miss calls fn and,
// when it succeeds with a non-nil result, stores the result in the
// background. Errors from fn are returned as-is and never cached. If the
// cache is unavailable, fn is called directly.
//
// Example:
//
//	getProduct := cacheable.WithCache(ic, cacheable.Options[string]{
//	    Key: func(id string) string { return cachekey.Simple("products", id) },
//	    TTL: 30 * time.Minute,
//	}, products.Get)
func WithCache[A, R any](ic *Interceptor, opts Options[A], fn Func[A, R]) Func[A, R] {
	return func(ctx context.Context, args A) (R, error) {
		if opts.SkipCache {
			return fn(ctx, args)
		}
		if !ic.client.IsAvailable(ctx) {
			return fn(ctx, args)
		}
		if opts.Condition != nil && !opts.Condition(args) {
			return fn(ctx, args)
		}

		key := opts.key(args, ic.opts.version)

		if v, ok := cache.GetValue[R](ctx, ic.client, key); ok {
			return v, nil
		}

		if !opts.SingleFlight {
			return load(ctx, ic, key, opts.TTL, fn, args)
		}

		v, err, shared := ic.group.Do(key, func() (any, error) {
			return load(ctx, ic, key, opts.TTL, fn, args)
		})
		if shared {
			ic.logger.DebugContext(ctx, "cache miss shared with in-flight call", slog.String("key", key))
		}
		if err != nil {
			var zero R
			return zero, err
		}

		out, ok := v.(R)
		if !ok && v != nil {
			var zero R
			return zero, fmt.Errorf("%w: %T", ErrUnexpectedResult, v)
		}
		return out, nil
	}
}

func load[A, R any](ctx context.Context, ic *Interceptor, key string, ttl time.Duration, fn Func[A, R], args A) (R, error) {
	result, err := fn(ctx, args)
	if err != nil {
		return result, err
	}
	if !isNil(result) {
		ic.store(ctx, key, result, ttl)
	}
	return result, nil
}
