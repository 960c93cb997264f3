package catalog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrymomot/shopcache/pkg/cacheable"
	"github.com/dmitrymomot/shopcache/pkg/cachekey"
	"github.com/dmitrymomot/shopcache/pkg/warmup"
)

// maxAnalyticsDays bounds the trailing range of an analytics query.
const maxAnalyticsDays = 365

// Product list paging bounds.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// listDefaults fill in paging parameters a request leaves out.
var listDefaults = cachekey.Params{"page": 1, "limit": defaultListLimit}

// ListQuery selects one page of the product list.
type ListQuery struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// AnalyticsQuery selects a trailing range of daily analytics ending today.
type AnalyticsQuery struct {
	Days int
}

// Catalog serves storefront reads through the cache. Keys match the ones
// the warmup service writes, so warmed entries are served as hits.
// Product updates are kept in memory on top of the source and invalidate
// every cached product view.
type Catalog struct {
	source  warmup.DataSource
	now     func() time.Time
	version string

	mu        sync.RWMutex
	overrides map[string]warmup.Product

	settings   cacheable.Func[struct{}, map[string]any]
	categories cacheable.Func[struct{}, []warmup.Category]
	featured   cacheable.Func[struct{}, []warmup.Product]
	list       cacheable.Func[ListQuery, []warmup.Product]
	product    cacheable.Func[string, *warmup.Product]
	analytics  cacheable.Func[AnalyticsQuery, map[string]any]
	update     cacheable.Func[warmup.Product, *warmup.Product]
}

// Option configures the Catalog.
type Option func(*Catalog)

// WithKeyVersion sets the key version. It must match the warmup service.
func WithKeyVersion(v string) Option {
	return func(c *Catalog) {
		if v != "" {
			c.version = v
		}
	}
}

// WithClock sets the time source for analytics ranges.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// New wraps source with read-through caching and invalidation.
func New(ic *cacheable.Interceptor, source warmup.DataSource, opts ...Option) *Catalog {
	c := &Catalog{
		source:    source,
		now:       time.Now,
		version:   cachekey.DefaultVersion,
		overrides: map[string]warmup.Product{},
	}
	for _, opt := range opts {
		opt(c)
	}

	v := cachekey.WithVersion(c.version)

	c.settings = cacheable.WithCache(ic, cacheable.Options[struct{}]{
		Key: func(struct{}) string { return warmup.SettingsKey(v) },
		TTL: warmup.SettingsTTL,
	}, func(ctx context.Context, _ struct{}) (map[string]any, error) {
		return c.source.Settings(ctx)
	})

	c.categories = cacheable.WithCache(ic, cacheable.Options[struct{}]{
		Key:          func(struct{}) string { return warmup.CategoryTreeKey(v) },
		TTL:          warmup.CategoryTreeTTL,
		SingleFlight: true,
	}, func(ctx context.Context, _ struct{}) ([]warmup.Category, error) {
		return c.source.CategoryTree(ctx)
	})

	c.featured = cacheable.WithCache(ic, cacheable.Options[struct{}]{
		Key:          func(struct{}) string { return warmup.FeaturedProductsKey(v) },
		TTL:          warmup.FeaturedProductsTTL,
		SingleFlight: true,
	}, c.loadFeatured)

	c.list = cacheable.WithCache(ic, cacheable.Options[ListQuery]{
		Key: func(q ListQuery) string { return warmup.ProductListKey(cachekey.FromArgs(q), v) },
		TTL: warmup.FeaturedProductsTTL,
	}, c.loadList)

	c.product = cacheable.WithCache(ic, cacheable.Options[string]{
		Key: func(id string) string { return warmup.ProductKey(id, v) },
		TTL: warmup.ProductTTL,
	}, c.loadProduct)

	c.analytics = cacheable.WithCache(ic, cacheable.Options[AnalyticsQuery]{
		Key: func(q AnalyticsQuery) string {
			from, to := c.analyticsRange(q)
			return warmup.AnalyticsKey(from, to, warmup.AnalyticsInterval, v)
		},
		TTL: warmup.AnalyticsTTL,
	}, c.loadAnalytics)

	c.update = cacheable.WithInvalidation(ic, cacheable.Invalidation[warmup.Product]{
		Patterns: []string{cachekey.Pattern("products", "*", v)},
	}, c.storeProduct)

	return c
}

// Settings returns the store settings.
func (c *Catalog) Settings(ctx context.Context) (map[string]any, error) {
	return c.settings(ctx, struct{}{})
}

// Categories returns the category tree.
func (c *Catalog) Categories(ctx context.Context) ([]warmup.Category, error) {
	return c.categories(ctx, struct{}{})
}

// FeaturedProducts returns the storefront products.
func (c *Catalog) FeaturedProducts(ctx context.Context) ([]warmup.Product, error) {
	return c.featured(ctx, struct{}{})
}

// Product returns a product by ID or ErrProductNotFound.
func (c *Catalog) Product(ctx context.Context, id string) (*warmup.Product, error) {
	return c.product(ctx, id)
}

// Products returns one page of the product list. Missing page and limit
// parameters take their defaults; other parameters are ignored so they
// do not fragment the cache.
func (c *Catalog) Products(ctx context.Context, params cachekey.Params) ([]warmup.Product, error) {
	q, err := parseListQuery(cachekey.Merge(listDefaults, params))
	if err != nil {
		return nil, err
	}
	return c.list(ctx, q)
}

// Analytics returns daily analytics for the trailing q.Days days.
func (c *Catalog) Analytics(ctx context.Context, q AnalyticsQuery) (map[string]any, error) {
	if q.Days <= 0 || q.Days > maxAnalyticsDays {
		return nil, ErrInvalidRange
	}
	return c.analytics(ctx, q)
}

// UpdateProduct stores p and invalidates cached product views.
func (c *Catalog) UpdateProduct(ctx context.Context, p warmup.Product) (*warmup.Product, error) {
	return c.update(ctx, p)
}

// Source returns a DataSource that reflects product updates, for the
// warmup service.
func (c *Catalog) Source() warmup.DataSource {
	return source{c}
}

func (c *Catalog) loadFeatured(ctx context.Context, _ struct{}) ([]warmup.Product, error) {
	products, err := c.source.FeaturedProducts(ctx)
	if err != nil {
		return nil, err
	}
	return c.applyOverrides(products), nil
}

func (c *Catalog) loadList(ctx context.Context, q ListQuery) ([]warmup.Product, error) {
	products, err := c.loadFeatured(ctx, struct{}{})
	if err != nil {
		return nil, err
	}

	if q.Page > len(products) {
		return []warmup.Product{}, nil
	}
	start := (q.Page - 1) * q.Limit
	if start >= len(products) {
		return []warmup.Product{}, nil
	}
	return products[start:min(start+q.Limit, len(products))], nil
}

func (c *Catalog) loadProduct(ctx context.Context, id string) (*warmup.Product, error) {
	c.mu.RLock()
	p, ok := c.overrides[id]
	c.mu.RUnlock()
	if ok {
		return &p, nil
	}

	products, err := c.source.FeaturedProducts(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(products, func(p warmup.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, ErrProductNotFound
	}
	return &products[i], nil
}

func (c *Catalog) loadAnalytics(ctx context.Context, q AnalyticsQuery) (map[string]any, error) {
	from, to := c.analyticsRange(q)
	return c.source.AnalyticsSnapshot(ctx, from, to, warmup.AnalyticsInterval)
}

func parseListQuery(params cachekey.Params) (ListQuery, error) {
	page, err := intParam(params, "page")
	if err != nil || page < 1 {
		return ListQuery{}, ErrInvalidQuery
	}
	limit, err := intParam(params, "limit")
	if err != nil || limit < 1 || limit > maxListLimit {
		return ListQuery{}, ErrInvalidQuery
	}
	return ListQuery{Page: page, Limit: limit}, nil
}

func intParam(params cachekey.Params, name string) (int, error) {
	switch v := params[name].(type) {
	case int:
		return v, nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("%s: unexpected value %v", name, v)
	}
}

// analyticsRange mirrors the warmup service: days ending today at midnight UTC.
func (c *Catalog) analyticsRange(q AnalyticsQuery) (time.Time, time.Time) {
	to := c.now().UTC().Truncate(24 * time.Hour)
	return to.AddDate(0, 0, -q.Days), to
}

func (c *Catalog) storeProduct(_ context.Context, p warmup.Product) (*warmup.Product, error) {
	if p.ID == "" || p.Price < 0 || p.Stock < 0 {
		return nil, ErrInvalidProduct
	}

	c.mu.Lock()
	c.overrides[p.ID] = p
	c.mu.Unlock()

	return &p, nil
}

func (c *Catalog) applyOverrides(products []warmup.Product) []warmup.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := slices.Clone(products)
	for i, p := range out {
		if o, ok := c.overrides[p.ID]; ok {
			out[i] = o
		}
	}
	return out
}

// source exposes the catalog's uncached view to the warmup service.
type source struct {
	c *Catalog
}

func (s source) Settings(ctx context.Context) (map[string]any, error) {
	return s.c.source.Settings(ctx)
}

func (s source) CategoryTree(ctx context.Context) ([]warmup.Category, error) {
	return s.c.source.CategoryTree(ctx)
}

func (s source) DashboardMetrics(ctx context.Context) (map[string]any, error) {
	return s.c.source.DashboardMetrics(ctx)
}

func (s source) FeaturedProducts(ctx context.Context) ([]warmup.Product, error) {
	return s.c.loadFeatured(ctx, struct{}{})
}

func (s source) AnalyticsSnapshot(ctx context.Context, from, to time.Time, interval string) (map[string]any, error) {
	return s.c.source.AnalyticsSnapshot(ctx, from, to, interval)
}

var _ warmup.DataSource = source{}
