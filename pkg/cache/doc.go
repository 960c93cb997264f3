// Package cache provides the application cache client and its backing stores.
//
// # Stores
//
// A [Store] is the raw key-value backend. Two implementations are provided:
//
//   - [Redis] for production, over a [github.com/redis/go-redis/v9.UniversalClient]
//     from [github.com/dmitrymomot/shopcache/pkg/redis]
//   - [Memory] for development and tests, with LRU eviction and a janitor
//
// Optional capabilities are discovered by type assertion: [KeyLister] for
// pattern enumeration, [TTLReader], [Configurer] for runtime configuration
// and [MemoryReporter]. Both bundled stores implement all of them.
//
// # Client
//
// [Client] wraps a store, serializes values and records [Metrics]:
//
//	client := cache.NewClient(cache.NewRedis(rdb, cache.WithPrefix("shop")),
//	    cache.WithLogger(log),
//	    cache.WithDefaultTTL(10*time.Minute),
//	    cache.WithCircuitBreaker(cache.DefaultBreakerSettings("redis", log)),
//	)
//
//	_ = client.Set(ctx, "v1:product:42", product, 30*time.Minute)
//	p, ok := cache.GetValue[Product](ctx, client, "v1:product:42")
//
// Failure semantics:
//
//   - Get never fails: store errors are logged, counted and become misses
//   - Set, Del and DelPattern return errors; callers decide whether to ignore them
//   - Exists and TTL swallow errors (false and -1)
//   - IsAvailable runs a set/get/delete round-trip on a sentinel key; a failed
//     round-trip counts as an error
//
// Each call makes one store attempt. There is no retry loop; an optional
// circuit breaker short-circuits calls while the store keeps failing.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the client's configured default TTL (1 hour by default)
//   - Negative: item never expires
//
// # Metrics
//
// Hits, misses, sets, deletes, errors, total requests and cumulative
// response time are kept in atomic counters for the life of the process.
// [Client.ResetMetrics] zeroes them. [NewCollector] exposes them to Prometheus.
//
// # Error Handling
//
// The package defines sentinel errors:
//
//   - [ErrNotFound] - key does not exist or has expired (stores only)
//   - [ErrClosed] - operation on a closed store
//   - [ErrMarshal] - value serialization failed
//   - [ErrUnmarshal] - value deserialization failed
//   - [ErrUnsupported] - the store lacks an optional capability
//   - [ErrOutOfMemory] - memory store full with eviction disabled
//   - [ErrInvalidPattern] - empty key pattern
package cache
