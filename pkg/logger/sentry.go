package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

const sentryFlushTimeout = 2 * time.Second

// SentryConfig holds Sentry integration configuration.
// An empty DSN disables Sentry.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	Release     string `env:"SENTRY_RELEASE"`
	// Warn stores warnings as Sentry logs in addition to errors.
	Warn bool `env:"SENTRY_WARN" envDefault:"true"`
}

// withSentry pairs base with a Sentry handler. Errors become Sentry issues.
// When the DSN is empty or the SDK fails to initialize, base is returned as is.
func withSentry(base slog.Handler, cfg SentryConfig) (slog.Handler, func()) {
	noop := func() {}
	if cfg.DSN == "" {
		return base, noop
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return base, noop
	}

	logLevel := []slog.Level{slog.LevelError}
	if cfg.Warn {
		logLevel = []slog.Level{slog.LevelWarn, slog.LevelError}
	}

	sh := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return fanout{base, sh}, func() { sentry.Flush(sentryFlushTimeout) }
}
