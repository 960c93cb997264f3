// Package server runs the process HTTP listener with graceful shutdown.
//
//	srv := server.New(router,
//	    server.WithAddress(cfg.HTTP.Address),
//	    server.WithLogger(log),
//	    server.WithShutdownHook(stopWarmup),
//	    server.WithShutdownHook(redis.Shutdown(rdb)),
//	)
//	if err := srv.Run(ctx); err != nil { ... }
//
// Run returns when ctx is cancelled or on SIGINT/SIGTERM. The HTTP server is
// drained first and the hooks then run in order within the shutdown timeout.
package server
