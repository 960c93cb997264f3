// Package logger builds the service's slog logger.
//
// Level and format come from [Config], which embeds into the application
// config:
//
//	log, flush := logger.New(cfg.Log, logger.RequestID(), logger.Static("service", "shopcache"))
//	defer flush()
//
// [ContextExtractor] functions run on every record and attach request-scoped
// values. [RequestID] reads the ID set by chi's middleware.RequestID, so cache
// errors logged while serving a request carry the request_id.
//
// # Sentry
//
// When SENTRY_DSN is set, records also go to Sentry: errors become issues and,
// with SENTRY_WARN, warnings are stored as logs. An empty DSN or a failed SDK
// init leaves stdout as the only sink. Call the flush function returned by
// [New] before exit to drain pending events.
//
// [NewNope] returns a logger that discards output, for tests and defaults.
package logger
