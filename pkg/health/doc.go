// Package health provides liveness and readiness HTTP handlers.
//
// Checks are plain func(ctx) error closures, which matches redis.Healthcheck
// and monitor.Service.Healthcheck:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(nil,
//		health.WithOptional(health.Checks{"cache": mon.Healthcheck()}),
//		health.WithLogger(log),
//	))
//
// Required checks decide readiness: any failure answers 503 with status
// "unhealthy". Optional checks only degrade the status and keep a 200, which
// suits the cache because requests fall back to the source of truth while it
// is down.
//
// All checks run in parallel under one timeout (3s by default). The response
// is plain text unless the client sends Accept: application/json or
// ?format=json.
package health
