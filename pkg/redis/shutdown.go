package redis

import (
	"context"
	"io"
)

// Shutdown returns a function that closes the Redis client.
// Register it as a server shutdown hook so the pool is closed after
// in-flight requests and background cache writes have finished.
//
// Example:
//
//	srv := server.New(handler,
//	    server.WithShutdownHook(redis.Shutdown(client)),
//	)
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
