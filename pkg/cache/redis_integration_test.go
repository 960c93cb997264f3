//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shopcache/pkg/cache"
	"github.com/dmitrymomot/shopcache/pkg/redis"
)

const testRedisURL = "redis://localhost:6379/0"

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = testRedisURL
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err, "failed to connect to Redis")

	t.Cleanup(func() {
		_ = client.FlushDB(ctx).Err()
		_ = client.Close()
	})

	return client
}

// --- Redis: live server ---

func TestRedisIntegration_MemoryUsage(t *testing.T) {
	client := newTestRedisClient(t)
	s := cache.NewRedis(client, cache.WithPrefix("test-mem"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("value"), time.Minute))

	info, err := s.MemoryUsage(ctx)
	require.NoError(t, err)
	require.Positive(t, info.UsedBytes)
	require.NotEmpty(t, info.UsedHuman)
	require.NotEmpty(t, info.Policy)
}

func TestRedisIntegration_ConfigureLRUEviction(t *testing.T) {
	client := newTestRedisClient(t)
	ctx := context.Background()

	previous, err := client.ConfigGet(ctx, "maxmemory-policy").Result()
	require.NoError(t, err)
	t.Cleanup(func() {
		if p := previous["maxmemory-policy"]; p != "" {
			_ = client.ConfigSet(ctx, "maxmemory-policy", p).Err()
		}
	})

	c := cache.NewClient(cache.NewRedis(client))
	require.NoError(t, c.ConfigureLRUEviction(ctx))

	info, err := c.MemoryUsage(ctx)
	require.NoError(t, err)
	require.Equal(t, cache.PolicyAllKeysLRU, info.Policy)
}

func TestRedisIntegration_DelPattern(t *testing.T) {
	client := newTestRedisClient(t)
	c := cache.NewClient(cache.NewRedis(client, cache.WithPrefix("test-pattern"), cache.WithScanCount(10)))
	ctx := context.Background()

	for i := range 50 {
		require.NoError(t, c.Set(ctx, "v1:products:"+string(rune('a'+i%26))+string(rune('a'+i/26)), i, time.Minute))
	}
	require.NoError(t, c.Set(ctx, "v1:settings", "keep", time.Minute))

	require.NoError(t, c.DelPattern(ctx, "v1:products:*"))

	require.Equal(t, int64(50), c.Metrics().Deletes)
	require.True(t, c.Exists(ctx, "v1:settings"))
	require.True(t, c.IsAvailable(ctx))
}
