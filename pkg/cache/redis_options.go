package cache

// RedisOption configures the Redis store.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix    string
	scanCount int64
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		prefix:    "",
		scanCount: 100,
	}
}

// WithPrefix sets a key prefix for all store operations.
// Keys are stored as "{prefix}:{key}". This is useful for namespacing
// when multiple applications share the same Redis instance.
// Keys returned by Keys have the prefix stripped.
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithScanCount sets the COUNT hint used when enumerating keys with SCAN.
// Default: 100.
func WithScanCount(n int64) RedisOption {
	return func(o *redisOptions) {
		if n > 0 {
			o.scanCount = n
		}
	}
}
