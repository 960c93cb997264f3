package warmup

import (
	"io"
	"log/slog"
	"time"
)

// TTLs applied to warmed entries.
const (
	SettingsTTL         = time.Hour
	CategoryTreeTTL     = 30 * time.Minute
	DashboardMetricsTTL = 5 * time.Minute
	FeaturedProductsTTL = 15 * time.Minute
	ProductTTL          = 30 * time.Minute
	AnalyticsTTL        = time.Hour
)

// Option configures the Service.
type Option func(*options)

type options struct {
	logger            *slog.Logger
	now               func() time.Time
	version           string
	analyticsRanges   []int
	frequentInterval  time.Duration
	analyticsInterval time.Duration
	runTimeout        time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:               time.Now,
		analyticsRanges:   []int{7, 30},
		frequentInterval:  10 * time.Minute,
		analyticsInterval: time.Hour,
		runTimeout:        time.Minute,
	}
}

// WithLogger sets the logger.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFrequentInterval sets how often settings, categories, dashboard
// metrics and featured products are re-warmed.
// Default: 10 minutes.
func WithFrequentInterval(d time.Duration) Option {
	return func(o *options) {
		o.frequentInterval = d
	}
}

// WithAnalyticsInterval sets how often analytics snapshots are re-warmed.
// Default: 1 hour.
func WithAnalyticsInterval(d time.Duration) Option {
	return func(o *options) {
		o.analyticsInterval = d
	}
}

// WithAnalyticsRanges sets the trailing day ranges warmed by WarmupAnalyticsData.
// Default: 7 and 30 days.
func WithAnalyticsRanges(days ...int) Option {
	return func(o *options) {
		if len(days) > 0 {
			o.analyticsRanges = days
		}
	}
}

// WithRunTimeout bounds a single scheduled warming pass.
// Default: 1 minute.
func WithRunTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.runTimeout = d
		}
	}
}

// WithKeyVersion sets the key version of warmed entries.
// Default: cachekey.DefaultVersion.
func WithKeyVersion(v string) Option {
	return func(o *options) {
		o.version = v
	}
}

// WithClock overrides the time source used for analytics ranges.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
