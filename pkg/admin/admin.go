package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/shopcache/pkg/cache"
	"github.com/dmitrymomot/shopcache/pkg/monitor"
)

// Warmer is the subset of warmup.Service used by the admin routes.
type Warmer interface {
	WarmupFrequentlyAccessedData(ctx context.Context) error
	WarmupFeaturedProducts(ctx context.Context) error
	WarmupAnalyticsData(ctx context.Context) error
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the logger for failed admin operations.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithWarmer enables the warmup routes. Without a warmer they respond with
// ErrWarmupDisabled.
func WithWarmer(w Warmer) Option {
	return func(h *Handler) {
		h.warmer = w
	}
}

// Handler serves the cache administration routes. Each route is a thin
// pass-through to the cache client, the monitor or the warmer.
type Handler struct {
	client  *cache.Client
	monitor *monitor.Service
	warmer  Warmer
	logger  *slog.Logger
}

// NewHandler creates the admin handler.
func NewHandler(client *cache.Client, mon *monitor.Service, opts ...Option) *Handler {
	h := &Handler{
		client:  client,
		monitor: mon,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns a router to mount under the admin prefix.
//
// Example:
//
//	r.Mount("/admin/cache", admin.NewHandler(client, mon, admin.WithWarmer(warmer)).Routes())
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)

	r.Get("/metrics", h.metrics)
	r.Delete("/metrics/reset", h.resetMetrics)
	r.Get("/health", h.health)
	r.Get("/report", h.report)
	r.Get("/memory", h.memory)
	r.Post("/warmup", h.warmup)
	r.Post("/warmup/featured-products", h.warmupFeaturedProducts)
	r.Post("/warmup/analytics", h.warmupAnalytics)
	r.Delete("/clear", h.clear)
	r.Post("/configure/lru", h.configureLRU)

	return r
}

func (h *Handler) metrics(w http.ResponseWriter, _ *http.Request) {
	writeData(w, h.monitor.Metrics())
}

func (h *Handler) resetMetrics(w http.ResponseWriter, _ *http.Request) {
	h.monitor.Reset()
	writeMessage(w, "Cache metrics reset")
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.monitor.Health(r.Context()))
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.monitor.Report(r.Context()))
}

func (h *Handler) memory(w http.ResponseWriter, r *http.Request) {
	info, err := h.client.MemoryUsage(r.Context())
	if err != nil {
		h.fail(w, r, "memory usage", err)
		return
	}
	writeData(w, info)
}

func (h *Handler) warmup(w http.ResponseWriter, r *http.Request) {
	h.runWarmup(w, r, "Frequently accessed data warmed", func(ctx context.Context, wm Warmer) error {
		return wm.WarmupFrequentlyAccessedData(ctx)
	})
}

func (h *Handler) warmupFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	h.runWarmup(w, r, "Featured products warmed", func(ctx context.Context, wm Warmer) error {
		return wm.WarmupFeaturedProducts(ctx)
	})
}

func (h *Handler) warmupAnalytics(w http.ResponseWriter, r *http.Request) {
	h.runWarmup(w, r, "Analytics data warmed", func(ctx context.Context, wm Warmer) error {
		return wm.WarmupAnalyticsData(ctx)
	})
}

func (h *Handler) runWarmup(w http.ResponseWriter, r *http.Request, message string, fn func(context.Context, Warmer) error) {
	if h.warmer == nil {
		h.fail(w, r, "warmup", ErrWarmupDisabled)
		return
	}
	if err := fn(r.Context(), h.warmer); err != nil {
		h.fail(w, r, "warmup", err)
		return
	}
	writeMessage(w, message)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DelPattern(r.Context(), "*"); err != nil {
		h.fail(w, r, "clear", err)
		return
	}
	writeMessage(w, "Cache cleared")
}

func (h *Handler) configureLRU(w http.ResponseWriter, r *http.Request) {
	if err := h.client.ConfigureLRUEviction(r.Context()); err != nil {
		h.fail(w, r, "configure lru", err)
		return
	}
	writeMessage(w, "LRU eviction policy configured")
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "cache admin operation failed",
		slog.String("operation", op),
		slog.Any("error", err),
	)
	writeError(w, http.StatusInternalServerError, err)
}
