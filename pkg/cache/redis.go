package cache

import (
	"bufio"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by Redis.
type Redis struct {
	client redis.UniversalClient
	opts   *redisOptions
}

// NewRedis creates a new Redis-backed store.
// The client should be obtained from pkg/redis.Open or pkg/redis.OpenConfig.
//
// Example:
//
//	client, err := redis.OpenConfig(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	store := cache.NewRedis(client, cache.WithPrefix("shop"))
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Redis{
		client: client,
		opts:   o,
	}
}

// Get retrieves a value by key from Redis.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefixedKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set stores a value in Redis. Non-positive TTL stores the key without
// expiration (it persists until deleted or evicted by Redis).
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefixedKey(key), value, max(ttl, 0)).Err()
}

// Delete removes keys from Redis. Each key is deleted with its own DEL in
// a single pipeline so that keys spread across cluster slots are handled.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	switch len(keys) {
	case 0:
		return nil
	case 1:
		return r.client.Del(ctx, r.prefixedKey(keys[0])).Err()
	}

	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, r.prefixedKey(key))
		}
		return nil
	})
	return err
}

// Has checks whether a key exists in Redis.
func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefixedKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Keys returns the keys matching pattern using SCAN.
// SCAN is used instead of KEYS because it does not block the server.
func (r *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, ErrInvalidPattern
	}

	var (
		cursor uint64
		out    []string
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefixedKey(pattern), r.opts.scanCount).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			out = append(out, r.unprefixedKey(key))
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return out, nil
}

// TTL returns the remaining lifetime of a key.
func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := r.client.TTL(ctx, r.prefixedKey(key)).Result()
	if err != nil {
		return 0, err
	}

	// go-redis passes the -1/-2 replies through unscaled.
	switch {
	case d == -2:
		return 0, ErrNotFound
	case d < 0:
		return NoExpiry, nil
	}
	return d, nil
}

// ConfigSet issues CONFIG SET parameter value.
func (r *Redis) ConfigSet(ctx context.Context, parameter, value string) error {
	return r.client.ConfigSet(ctx, parameter, value).Err()
}

// MemoryUsage parses the memory section of INFO.
func (r *Redis) MemoryUsage(ctx context.Context) (MemoryInfo, error) {
	raw, err := r.client.Info(ctx, "memory").Result()
	if err != nil {
		return MemoryInfo{}, err
	}
	return parseMemoryInfo(raw), nil
}

// Ping verifies connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op for Redis. The Redis client lifecycle is managed
// separately by the caller (via pkg/redis.Shutdown).
func (r *Redis) Close() error {
	return nil
}

// prefixedKey returns the full Redis key with prefix.
func (r *Redis) prefixedKey(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

func (r *Redis) unprefixedKey(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, r.opts.prefix+":")
}

// parseMemoryInfo extracts the fields of interest from an INFO memory reply.
func parseMemoryInfo(raw string) MemoryInfo {
	var info MemoryInfo

	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok {
			continue
		}
		switch name {
		case "used_memory":
			info.UsedBytes, _ = strconv.ParseInt(value, 10, 64)
		case "used_memory_human":
			info.UsedHuman = value
		case "maxmemory":
			info.MaxBytes, _ = strconv.ParseInt(value, 10, 64)
		case "maxmemory_policy":
			info.Policy = value
		}
	}

	return info
}

var (
	_ Store          = (*Redis)(nil)
	_ KeyLister      = (*Redis)(nil)
	_ TTLReader      = (*Redis)(nil)
	_ Configurer     = (*Redis)(nil)
	_ MemoryReporter = (*Redis)(nil)
)
