package warmup

import (
	"time"

	"github.com/dmitrymomot/shopcache/pkg/cachekey"
)

// AnalyticsInterval is the aggregation interval of warmed analytics snapshots.
const AnalyticsInterval = "daily"

// Read paths build keys with the functions below so that warmed entries are hits.

// SettingsKey is the key of the store settings.
func SettingsKey(opts ...cachekey.Option) string {
	return cachekey.Generate("settings", nil, opts...)
}

// CategoryTreeKey is the key of the full category tree.
func CategoryTreeKey(opts ...cachekey.Option) string {
	return cachekey.Simple("categories", "tree", opts...)
}

// DashboardMetricsKey is the key of the admin dashboard metrics.
func DashboardMetricsKey(opts ...cachekey.Option) string {
	return cachekey.Simple("dashboard", "metrics", opts...)
}

// FeaturedProductsKey is the key of the featured product list. List keys
// live under products:list so they never collide with a product ID.
func FeaturedProductsKey(opts ...cachekey.Option) string {
	return cachekey.Simple("products:list", "featured", opts...)
}

// ProductListKey is the key of one page of the product list.
func ProductListKey(params cachekey.Params, opts ...cachekey.Option) string {
	return cachekey.Generate("products:list", params, opts...)
}

// ProductKey is the key of a single product.
func ProductKey(id string, opts ...cachekey.Option) string {
	return cachekey.Simple("products", id, opts...)
}

// AnalyticsKey is the key of an analytics snapshot over [from, to].
func AnalyticsKey(from, to time.Time, interval string, opts ...cachekey.Option) string {
	return cachekey.Analytics("analytics:dashboard", &from, &to, interval, opts...)
}
