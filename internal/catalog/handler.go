package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/shopcache/pkg/cachekey"
	"github.com/dmitrymomot/shopcache/pkg/warmup"
)

const maxBodyBytes = 64 << 10

// Handler exposes the catalog over HTTP.
type Handler struct {
	catalog *Catalog
	logger  *slog.Logger
}

// NewHandler creates a catalog handler. A nil logger discards output.
func NewHandler(c *Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{catalog: c, logger: logger}
}

// Routes returns the storefront router:
//
//	GET /settings
//	GET /categories
//	GET /products?page=1&limit=20
//	GET /products/featured
//	GET /products/{id}
//	PUT /products/{id}
//	GET /analytics?days=7
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		v, err := h.catalog.Settings(r.Context())
		h.respond(w, r, v, err)
	})
	r.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
		v, err := h.catalog.Categories(r.Context())
		h.respond(w, r, v, err)
	})
	r.Get("/products", func(w http.ResponseWriter, r *http.Request) {
		v, err := h.catalog.Products(r.Context(), cachekey.FromRequest(r))
		h.respond(w, r, v, err)
	})
	r.Get("/products/featured", func(w http.ResponseWriter, r *http.Request) {
		v, err := h.catalog.FeaturedProducts(r.Context())
		h.respond(w, r, v, err)
	})
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		v, err := h.catalog.Product(r.Context(), chi.URLParam(r, "id"))
		h.respond(w, r, v, err)
	})
	r.Put("/products/{id}", h.updateProduct)
	r.Get("/analytics", h.analytics)

	return r
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p warmup.Product
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&p); err != nil {
		h.respond(w, r, nil, errors.Join(ErrInvalidProduct, err))
		return
	}
	p.ID = chi.URLParam(r, "id")

	v, err := h.catalog.UpdateProduct(r.Context(), p)
	h.respond(w, r, v, err)
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	days := 7
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.respond(w, r, nil, ErrInvalidRange)
			return
		}
		days = n
	}

	v, err := h.catalog.Analytics(r.Context(), AnalyticsQuery{Days: days})
	h.respond(w, r, v, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, v)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidProduct), errors.Is(err, ErrInvalidRange), errors.Is(err, ErrInvalidQuery):
		status = http.StatusBadRequest
	default:
		h.logger.ErrorContext(r.Context(), "catalog request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
