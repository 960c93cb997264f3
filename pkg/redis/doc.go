// Package redis opens and manages the Redis connection behind the cache.
//
// It wraps [github.com/redis/go-redis/v9] with startup retries, a health
// check and a shutdown hook. Defaults favor cache traffic: short read and
// write timeouts, so a struggling server turns cache reads into misses
// instead of slow requests.
//
// # Configuration
//
// Connections are configured with functional options or with [Config],
// which is populated from the environment:
//
//	var cfg redis.Config
//	if err := env.Parse(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.OpenConfig(ctx, cfg, redis.WithLogger(log))
//
// Options and their defaults:
//
//   - WithPoolSize(n int): maximum connections (default: 10)
//   - WithMinIdleConns(n int): minimum idle connections (default: 5)
//   - WithMaxIdleTime(d): maximum idle time (default: 10m)
//   - WithMaxActiveTime(d): maximum connection lifetime (default: 30m)
//   - WithRetry(attempts, interval): startup retries (default: 3 attempts, 2s)
//   - WithReadTimeout(d), WithWriteTimeout(d): command timeouts (default: 500ms)
//   - WithDialTimeout(d): dial timeout (default: 2s)
//   - WithClientName(name): CLIENT SETNAME value (default: "shopcache")
//   - WithLogger(l): logger for failed attempts (default: discard)
//
// # Health Checks
//
// [Healthcheck] returns a closure for readiness probes:
//
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"redis": redis.Healthcheck(client),
//	}))
//
// # Error Handling
//
//   - [ErrEmptyConnectionURL] - empty connection URL
//   - [ErrFailedToParseURL] - invalid URL format or scheme
//   - [ErrConnectionFailed] - connection failed after all retry attempts
//   - [ErrHealthcheckFailed] - ping failed
//
// Errors are wrapped using [errors.Join] to preserve the original error.
package redis
