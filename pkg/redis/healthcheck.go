package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// healthcheckTimeout caps a single PING so a stalled server fails the
// probe instead of holding it until the caller's deadline.
const healthcheckTimeout = time.Second

// Healthcheck returns a func(ctx) error check for readiness probes.
// It pings the server within one second.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.Join(ErrHealthcheckFailed, ErrNilClient)
		}

		ctx, cancel := context.WithTimeout(ctx, healthcheckTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
