// Package admin exposes cache administration over HTTP.
//
// Mount [Handler.Routes] under a protected prefix:
//
//	r.Mount("/admin/cache", admin.NewHandler(client, mon, admin.WithWarmer(warmer)).Routes())
//
// Routes:
//
//	GET    /metrics                   current counters
//	DELETE /metrics/reset             zero the counters
//	GET    /health                    availability, memory and recommendations
//	GET    /report                    health plus a text summary
//	GET    /memory                    store memory usage
//	POST   /warmup                    warm settings, categories and dashboard
//	POST   /warmup/featured-products  warm featured products
//	POST   /warmup/analytics          warm analytics snapshots
//	DELETE /clear                     delete every key
//	POST   /configure/lru             switch the store to allkeys-lru
//
// Successful responses are {"success":true,"data":...} or
// {"success":true,"message":...}. Failures respond 500 with
// {"success":false,"error":...}.
//
// Authentication is left to the router the handler is mounted on.
package admin
