package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/shopcache/pkg/logger"
	"github.com/dmitrymomot/shopcache/pkg/redis"
)

// Cache drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Sentinel errors for configuration loading.
var (
	ErrParse         = errors.New("config: failed to parse environment")
	ErrInvalidDriver = errors.New("config: unknown cache driver")
)

// Config is the process configuration read from the environment.
type Config struct {
	HTTP    HTTP
	Log     logger.Config
	Redis   redis.Config
	Cache   Cache
	Warmup  Warmup
	Monitor Monitor
}

// HTTP configures the listener and admin routes.
type HTTP struct {
	Address         string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	AdminPrefix     string        `env:"ADMIN_PREFIX" envDefault:"/admin/cache"`
}

// Cache configures the store and the client in front of it.
type Cache struct {
	Driver        string        `env:"CACHE_DRIVER" envDefault:"redis"`
	KeyPrefix     string        `env:"CACHE_KEY_PREFIX"`
	KeyVersion    string        `env:"CACHE_KEY_VERSION" envDefault:"v1"`
	DefaultTTL    time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"1h"`
	WriteTimeout  time.Duration `env:"CACHE_WRITE_TIMEOUT" envDefault:"5s"`
	ProbeInterval time.Duration `env:"CACHE_PROBE_INTERVAL" envDefault:"1s"`
	Breaker       bool          `env:"CACHE_CIRCUIT_BREAKER" envDefault:"true"`
	ConfigureLRU  bool          `env:"CACHE_CONFIGURE_LRU" envDefault:"true"`

	// Memory driver only.
	MaxEntries      int           `env:"CACHE_MEMORY_MAX_ENTRIES" envDefault:"100000"`
	CleanupInterval time.Duration `env:"CACHE_MEMORY_CLEANUP_INTERVAL" envDefault:"1m"`
}

// Warmup configures the warming service.
type Warmup struct {
	Enabled           bool          `env:"WARMUP_ENABLED" envDefault:"true"`
	Fixture           string        `env:"WARMUP_FIXTURE" envDefault:"warmup.yaml"`
	FrequentInterval  time.Duration `env:"WARMUP_FREQUENT_INTERVAL" envDefault:"10m"`
	AnalyticsInterval time.Duration `env:"WARMUP_ANALYTICS_INTERVAL" envDefault:"1h"`
	AnalyticsRanges   []int         `env:"WARMUP_ANALYTICS_RANGES" envDefault:"7,30" envSeparator:","`
	RunTimeout        time.Duration `env:"WARMUP_RUN_TIMEOUT" envDefault:"1m"`
}

// Monitor configures periodic metrics logging.
type Monitor struct {
	Interval time.Duration `env:"MONITOR_INTERVAL" envDefault:"1m"`
	// Namespace prefixes the Prometheus metric names.
	Namespace string `env:"METRICS_NAMESPACE" envDefault:"shopcache"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParse, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Driver {
	case DriverRedis, DriverMemory:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Cache.Driver)
	}
}
