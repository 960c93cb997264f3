package server

import (
	"context"
	"log/slog"
	"time"
)

// Default server timeouts.
const (
	defaultAddress           = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Option configures the server runtime.
type Option func(*Server)

// WithAddress sets the listen address. Defaults to ":8080".
func WithAddress(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.address = addr
		}
	}
}

// WithLogger sets the server logger. If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShutdownTimeout sets the budget shared by the HTTP shutdown and all
// hooks. Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithShutdownHook registers a cleanup function to run after the HTTP server
// stops. Hooks run in registration order; register dependents before their
// dependencies (stop the warmer before closing Redis).
//
// Example:
//
//	server.WithShutdownHook(redis.Shutdown(rdb))
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(s *Server) {
		if fn != nil {
			s.shutdownHooks = append(s.shutdownHooks, fn)
		}
	}
}

// WithReady registers a callback that receives the bound address once the
// listener is open. Useful with ":0" in tests.
func WithReady(fn func(addr string)) Option {
	return func(s *Server) {
		if fn != nil {
			s.ready = fn
		}
	}
}
