// Package catalog is the storefront read API served by the process.
//
// Reads go through cacheable.WithCache using the same keys the warmup
// service writes, so warmed data is served as cache hits. Product updates
// go through cacheable.WithInvalidation and drop every cached product view.
// Data comes from a warmup.DataSource; updates are held in memory.
package catalog
