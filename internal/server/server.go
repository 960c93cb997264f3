package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Server runs an http.Handler until the context is cancelled or the process
// receives SIGINT/SIGTERM, then shuts down gracefully.
type Server struct {
	handler         http.Handler
	logger          *slog.Logger
	ready           func(addr string)
	address         string
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// New creates a server for handler.
func New(handler http.Handler, opts ...Option) *Server {
	s := &Server{
		handler:         handler,
		address:         defaultAddress,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdownTimeout: defaultShutdownTimeout,
		ready:           func(string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the HTTP server and blocks until shutdown.
// Shutdown stops accepting requests, drains in-flight ones and then runs
// the hooks. Errors from the server and hooks are joined.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	// Listen first to get the actual address.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.Join(s.shutdown(), err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.ready(ln.Addr().String())

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer shutdownCancel()

	errs := []error{serveErr}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, s.runHooks(shutdownCtx))

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("shutdown completed with errors", slog.String("error", err.Error()))
		return err
	}

	s.logger.Info("shutdown completed")
	return nil
}

// shutdown runs the hooks with a fresh budget. Used when the server never
// started, so resources opened before Run are still released.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.runHooks(ctx)
}

func (s *Server) runHooks(ctx context.Context) error {
	var errs []error
	for _, hook := range s.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			s.logger.Error("shutdown hook failed", slog.String("error", err.Error()))
		}
	}
	return errors.Join(errs...)
}
