package warmup

import (
	"context"
	"time"
)

// DataSource produces the data that is written to the cache ahead of demand.
// Implementations are usually thin adapters over the catalog and analytics
// services.
type DataSource interface {
	// Settings returns the global store settings.
	Settings(ctx context.Context) (map[string]any, error)

	// CategoryTree returns the root categories with their children.
	CategoryTree(ctx context.Context) ([]Category, error)

	// DashboardMetrics returns the current admin dashboard figures.
	DashboardMetrics(ctx context.Context) (map[string]any, error)

	// FeaturedProducts returns the products shown on the storefront.
	FeaturedProducts(ctx context.Context) ([]Product, error)

	// AnalyticsSnapshot returns aggregated analytics for [from, to].
	AnalyticsSnapshot(ctx context.Context, from, to time.Time, interval string) (map[string]any, error)
}

// Category is a node in the category tree.
type Category struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Slug     string     `json:"slug" yaml:"slug"`
	Children []Category `json:"children,omitempty" yaml:"children"`
}

// Product is the cached representation of a catalog product.
type Product struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Slug  string  `json:"slug" yaml:"slug"`
	Price float64 `json:"price" yaml:"price"`
	Stock int     `json:"stock" yaml:"stock"`
}
