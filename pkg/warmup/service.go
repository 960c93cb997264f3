package warmup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/shopcache/pkg/cache"
	"github.com/dmitrymomot/shopcache/pkg/cachekey"
)

// Service writes high-traffic data to the cache ahead of demand, once on
// start and then periodically.
type Service struct {
	client *cache.Client
	source DataSource
	opts   *options
	logger *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewService creates a warming service.
//
// Example:
//
//	svc := warmup.NewService(client, source,
//	    warmup.WithLogger(log),
//	    warmup.WithFrequentInterval(5*time.Minute),
//	)
//	if err := svc.Start(ctx); err != nil {
//	    return err
//	}
//	defer svc.Stop()
func NewService(client *cache.Client, source DataSource, opts ...Option) *Service {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Service{
		client: client,
		source: source,
		opts:   o,
		logger: o.logger,
	}
}

// WarmupFrequentlyAccessedData warms global settings, the category tree and
// the dashboard metrics. A failing source call skips its entry; the other
// entries are still written. All failures are returned joined.
func (s *Service) WarmupFrequentlyAccessedData(ctx context.Context) error {
	var (
		entries []cache.WarmupEntry
		errs    []error
	)

	if settings, err := s.source.Settings(ctx); err != nil {
		errs = append(errs, s.sourceFailed(ctx, "settings", err))
	} else {
		entries = append(entries, cache.WarmupEntry{Key: SettingsKey(s.keyOpts()...), Value: settings, TTL: SettingsTTL})
	}

	if tree, err := s.source.CategoryTree(ctx); err != nil {
		errs = append(errs, s.sourceFailed(ctx, "category tree", err))
	} else {
		entries = append(entries, cache.WarmupEntry{Key: CategoryTreeKey(s.keyOpts()...), Value: tree, TTL: CategoryTreeTTL})
	}

	if metrics, err := s.source.DashboardMetrics(ctx); err != nil {
		errs = append(errs, s.sourceFailed(ctx, "dashboard metrics", err))
	} else {
		entries = append(entries, cache.WarmupEntry{Key: DashboardMetricsKey(s.keyOpts()...), Value: metrics, TTL: DashboardMetricsTTL})
	}

	return s.warm(ctx, "frequently accessed data", entries, errs)
}

// WarmupFeaturedProducts warms the featured product list and one entry per
// featured product.
func (s *Service) WarmupFeaturedProducts(ctx context.Context) error {
	products, err := s.source.FeaturedProducts(ctx)
	if err != nil {
		return s.sourceFailed(ctx, "featured products", err)
	}

	entries := make([]cache.WarmupEntry, 0, len(products)+1)
	entries = append(entries, cache.WarmupEntry{Key: FeaturedProductsKey(s.keyOpts()...), Value: products, TTL: FeaturedProductsTTL})
	for _, p := range products {
		entries = append(entries, cache.WarmupEntry{Key: ProductKey(p.ID, s.keyOpts()...), Value: p, TTL: ProductTTL})
	}

	return s.warm(ctx, "featured products", entries, nil)
}

// WarmupAnalyticsData warms daily analytics snapshots for each trailing
// range ending today (7 and 30 days by default).
func (s *Service) WarmupAnalyticsData(ctx context.Context) error {
	to := s.opts.now().UTC().Truncate(24 * time.Hour)

	var (
		entries []cache.WarmupEntry
		errs    []error
	)
	for _, days := range s.opts.analyticsRanges {
		from := to.AddDate(0, 0, -days)

		snapshot, err := s.source.AnalyticsSnapshot(ctx, from, to, AnalyticsInterval)
		if err != nil {
			errs = append(errs, s.sourceFailed(ctx, fmt.Sprintf("analytics %dd", days), err))
			continue
		}
		entries = append(entries, cache.WarmupEntry{
			Key:   AnalyticsKey(from, to, AnalyticsInterval, s.keyOpts()...),
			Value: snapshot,
			TTL:   AnalyticsTTL,
		})
	}

	return s.warm(ctx, "analytics data", entries, errs)
}

// Start runs every warming pass once and then schedules periodic warming.
// Failures of the initial pass are logged and do not prevent scheduling.
func (s *Service) Start(ctx context.Context) error {
	s.warmFrequent(ctx)
	s.warmAnalytics(ctx)

	return s.SchedulePeriodicWarmup(ctx)
}

// SchedulePeriodicWarmup registers two independent jobs: frequently accessed
// data plus featured products on the frequent interval, analytics on the
// analytics interval. A failing or panicking pass is logged and the schedule
// continues. Calling it again replaces the previous schedule.
//
// ctx is passed to every pass and must outlive the schedule.
func (s *Service) SchedulePeriodicWarmup(ctx context.Context) error {
	if s.opts.frequentInterval < time.Second || s.opts.analyticsInterval < time.Second {
		return ErrInvalidPeriod
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{s.logger}),
		cron.SkipIfStillRunning(cronLogger{s.logger}),
	))
	c.Schedule(cron.Every(s.opts.frequentInterval), cron.FuncJob(func() {
		s.warmFrequent(ctx)
	}))
	c.Schedule(cron.Every(s.opts.analyticsInterval), cron.FuncJob(func() {
		s.warmAnalytics(ctx)
	}))

	s.mu.Lock()
	previous := s.cron
	s.cron = c
	s.mu.Unlock()

	if previous != nil {
		<-previous.Stop().Done()
	}
	c.Start()

	s.logger.InfoContext(ctx, "periodic cache warmup scheduled",
		slog.Duration("frequent_interval", s.opts.frequentInterval),
		slog.Duration("analytics_interval", s.opts.analyticsInterval),
	)

	return nil
}

// Stop cancels periodic warming and waits for a running pass to finish.
// It is safe to call when nothing is scheduled.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("periodic cache warmup stopped")
}

// Scheduled reports the number of registered periodic jobs.
func (s *Service) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

func (s *Service) warmFrequent(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.runTimeout)
	defer cancel()

	if err := s.WarmupFrequentlyAccessedData(ctx); err != nil {
		s.logger.ErrorContext(ctx, "frequent data warmup failed", slog.Any("error", err))
	}
	if err := s.WarmupFeaturedProducts(ctx); err != nil {
		s.logger.ErrorContext(ctx, "featured products warmup failed", slog.Any("error", err))
	}
}

func (s *Service) warmAnalytics(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.runTimeout)
	defer cancel()

	if err := s.WarmupAnalyticsData(ctx); err != nil {
		s.logger.ErrorContext(ctx, "analytics warmup failed", slog.Any("error", err))
	}
}

func (s *Service) warm(ctx context.Context, what string, entries []cache.WarmupEntry, errs []error) error {
	if len(entries) > 0 {
		if err := s.client.WarmCache(ctx, entries); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.InfoContext(ctx, "cache warmup completed",
		slog.String("target", what),
		slog.Int("entries", len(entries)),
		slog.Int("errors", len(errs)),
	)

	return errors.Join(errs...)
}

func (s *Service) sourceFailed(ctx context.Context, what string, err error) error {
	s.logger.WarnContext(ctx, "warmup data source failed, skipping entry",
		slog.String("entry", what),
		slog.Any("error", err),
	)
	return fmt.Errorf("%w: %s: %w", ErrSource, what, err)
}

func (s *Service) keyOpts() []cachekey.Option {
	return []cachekey.Option{cachekey.WithVersion(s.opts.version)}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
