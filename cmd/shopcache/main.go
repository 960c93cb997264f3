// Command shopcache serves the storefront catalog through the application
// cache, together with the cache admin API, Prometheus metrics and health
// probes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/shopcache/internal/catalog"
	"github.com/dmitrymomot/shopcache/internal/config"
	"github.com/dmitrymomot/shopcache/internal/server"
	"github.com/dmitrymomot/shopcache/middlewares"
	"github.com/dmitrymomot/shopcache/pkg/admin"
	"github.com/dmitrymomot/shopcache/pkg/cache"
	"github.com/dmitrymomot/shopcache/pkg/cacheable"
	"github.com/dmitrymomot/shopcache/pkg/health"
	"github.com/dmitrymomot/shopcache/pkg/logger"
	"github.com/dmitrymomot/shopcache/pkg/monitor"
	"github.com/dmitrymomot/shopcache/pkg/redis"
	"github.com/dmitrymomot/shopcache/pkg/warmup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, flush := logger.New(cfg.Log, logger.RequestID(), logger.Static("service", "shopcache"))

	err = run(context.Background(), cfg, log)
	flush()
	if err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	source, err := openSource(cfg)
	if err != nil {
		return err
	}

	store, optionalChecks, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	clientOpts := []cache.ClientOption{
		cache.WithLogger(log.With(slog.String("component", "cache"))),
		cache.WithDefaultTTL(cfg.Cache.DefaultTTL),
		cache.WithAvailabilityProbeInterval(cfg.Cache.ProbeInterval),
	}
	if cfg.Cache.Breaker {
		clientOpts = append(clientOpts, cache.WithCircuitBreaker(cache.DefaultBreakerSettings("cache-store", log)))
	}
	client := cache.NewClient(store, clientOpts...)

	if cfg.Cache.ConfigureLRU {
		if err := client.ConfigureLRUEviction(ctx); err != nil {
			log.Warn("failed to configure LRU eviction", slog.String("error", err.Error()))
		}
	}

	ic := cacheable.New(client,
		cacheable.WithLogger(log.With(slog.String("component", "cacheable"))),
		cacheable.WithWriteTimeout(cfg.Cache.WriteTimeout),
		cacheable.WithKeyVersion(cfg.Cache.KeyVersion),
	)
	shop := catalog.New(ic, source, catalog.WithKeyVersion(cfg.Cache.KeyVersion))

	mon := monitor.NewService(client, monitor.WithLogger(log.With(slog.String("component", "monitor"))))
	if err := mon.Start(cfg.Monitor.Interval); err != nil {
		return errors.Join(err, closeStore(ctx))
	}
	optionalChecks["cache"] = mon.Healthcheck()

	adminOpts := []admin.Option{admin.WithLogger(log.With(slog.String("component", "admin")))}
	var warmer *warmup.Service
	if cfg.Warmup.Enabled {
		warmer = warmup.NewService(client, shop.Source(),
			warmup.WithLogger(log.With(slog.String("component", "warmup"))),
			warmup.WithFrequentInterval(cfg.Warmup.FrequentInterval),
			warmup.WithAnalyticsInterval(cfg.Warmup.AnalyticsInterval),
			warmup.WithAnalyticsRanges(cfg.Warmup.AnalyticsRanges...),
			warmup.WithRunTimeout(cfg.Warmup.RunTimeout),
			warmup.WithKeyVersion(cfg.Cache.KeyVersion),
		)
		if err := warmer.Start(ctx); err != nil {
			mon.Stop()
			return errors.Join(err, closeStore(ctx))
		}
		adminOpts = append(adminOpts, admin.WithWarmer(warmer))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		cache.NewCollector(client, cfg.Monitor.Namespace),
	)

	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		middlewares.RequestID(),
		middlewares.Recover(middlewares.WithRecoverLogger(log)),
	)
	r.Get("/health/live", health.LivenessHandler())
	// The cache fails open, so its checks only degrade readiness.
	r.Get("/health/ready", health.ReadinessHandler(nil,
		health.WithOptional(optionalChecks),
		health.WithLogger(log),
	))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Mount(cfg.HTTP.AdminPrefix, admin.NewHandler(client, mon, adminOpts...).Routes())
	r.Mount("/api", catalog.NewHandler(shop, log).Routes())

	// Hooks run in order: stop producers of cache writes, drain pending
	// writes, then close the store.
	return server.New(r,
		server.WithAddress(cfg.HTTP.Address),
		server.WithLogger(log),
		server.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout),
		server.WithShutdownHook(func(context.Context) error {
			if warmer != nil {
				warmer.Stop()
			}
			mon.Stop()
			return nil
		}),
		server.WithShutdownHook(func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				ic.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
		server.WithShutdownHook(closeStore),
	).Run(ctx)
}

// openStore returns the configured cache store, its health checks and its
// close function.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, health.Checks, func(context.Context) error, error) {
	if cfg.Cache.Driver == config.DriverMemory {
		mem := cache.NewMemory(
			cache.WithMaxEntries(cfg.Cache.MaxEntries),
			cache.WithCleanupInterval(cfg.Cache.CleanupInterval),
		)
		return mem, health.Checks{}, func(context.Context) error { return mem.Close() }, nil
	}

	// Unless REDIS_REQUIRE_PING is set, an unreachable server is logged and
	// the store starts degraded; only a malformed URL stops startup.
	rdb, err := redis.OpenConfig(ctx, cfg.Redis, redis.WithLogger(log.With(slog.String("component", "redis"))))
	if err != nil {
		return nil, nil, nil, err
	}
	store := cache.NewRedis(rdb, cache.WithPrefix(cfg.Cache.KeyPrefix))
	return store, health.Checks{"redis": redis.Healthcheck(rdb)}, redis.Shutdown(rdb), nil
}

func openSource(cfg config.Config) (warmup.DataSource, error) {
	src, err := warmup.LoadFile(cfg.Warmup.Fixture)
	if err != nil {
		return nil, fmt.Errorf("load catalog fixture %q: %w", cfg.Warmup.Fixture, err)
	}
	return src, nil
}
