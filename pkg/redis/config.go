package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection parameters for the cache backend.
// Embed it in the application config for env parsing with caarlos0/env.
type Config struct {
	// redis:// or rediss:// URL, including the database number.
	URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Pool sizing. The cache issues short commands, so a small pool with a
	// few warm connections covers typical traffic.
	PoolSize     int `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`

	MaxIdleTime   time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m"`
	MaxActiveTime time.Duration `env:"REDIS_MAX_ACTIVE_TIME" envDefault:"30m"`

	// Cache reads fall back to the database on failure, so timeouts stay
	// short to keep a slow Redis from stalling requests.
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"500ms"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"500ms"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`

	// Startup retries with linear backoff.
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`

	// The cache fails open, so by default an unreachable server at startup
	// is logged and the client keeps dialing on demand.
	RequirePing bool `env:"REDIS_REQUIRE_PING" envDefault:"false"`
}

// Options converts the config into connection options.
func (c Config) Options() []Option {
	var opts []Option
	if c.PoolSize > 0 {
		opts = append(opts, WithPoolSize(c.PoolSize))
	}
	if c.MinIdleConns > 0 {
		opts = append(opts, WithMinIdleConns(c.MinIdleConns))
	}
	if c.MaxIdleTime > 0 {
		opts = append(opts, WithMaxIdleTime(c.MaxIdleTime))
	}
	if c.MaxActiveTime > 0 {
		opts = append(opts, WithMaxActiveTime(c.MaxActiveTime))
	}
	if c.ReadTimeout > 0 {
		opts = append(opts, WithReadTimeout(c.ReadTimeout))
	}
	if c.WriteTimeout > 0 {
		opts = append(opts, WithWriteTimeout(c.WriteTimeout))
	}
	if c.DialTimeout > 0 {
		opts = append(opts, WithDialTimeout(c.DialTimeout))
	}
	if c.RetryAttempts > 0 {
		opts = append(opts, WithRetry(c.RetryAttempts, c.RetryInterval))
	}
	return append(opts, WithRequirePing(c.RequirePing))
}

// OpenConfig opens a client from cfg. Extra options are applied after the
// config values.
func OpenConfig(ctx context.Context, cfg Config, opts ...Option) (redis.UniversalClient, error) {
	return Open(ctx, cfg.URL, append(cfg.Options(), opts...)...)
}
