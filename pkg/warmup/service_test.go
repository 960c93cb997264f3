package warmup_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shopcache/pkg/cache"
	"github.com/dmitrymomot/shopcache/pkg/cachekey"
	"github.com/dmitrymomot/shopcache/pkg/warmup"
)

var errSourceDown = errors.New("source down")

type fakeSource struct {
	failSettings  bool
	failFeatured  bool
	failAnalytics bool

	settingsCalls  atomic.Int64
	analyticsCalls atomic.Int64
}

func (f *fakeSource) Settings(context.Context) (map[string]any, error) {
	f.settingsCalls.Add(1)
	if f.failSettings {
		return nil, errSourceDown
	}
	return map[string]any{"currency": "USD"}, nil
}

func (f *fakeSource) CategoryTree(context.Context) ([]warmup.Category, error) {
	return []warmup.Category{{ID: "1", Name: "Lighting", Slug: "lighting"}}, nil
}

func (f *fakeSource) DashboardMetrics(context.Context) (map[string]any, error) {
	return map[string]any{"orders_today": 12}, nil
}

func (f *fakeSource) FeaturedProducts(context.Context) ([]warmup.Product, error) {
	if f.failFeatured {
		return nil, errSourceDown
	}
	return []warmup.Product{
		{ID: "42", Name: "Desk Lamp", Price: 19.5},
		{ID: "43", Name: "Floor Lamp", Price: 79},
	}, nil
}

func (f *fakeSource) AnalyticsSnapshot(_ context.Context, from, to time.Time, interval string) (map[string]any, error) {
	f.analyticsCalls.Add(1)
	if f.failAnalytics {
		return nil, errSourceDown
	}
	return map[string]any{
		"from":     from.Format(time.DateOnly),
		"to":       to.Format(time.DateOnly),
		"interval": interval,
		"revenue":  1000,
	}, nil
}

func newClient(t *testing.T) *cache.Client {
	t.Helper()

	store := cache.NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	return cache.NewClient(store)
}

var fixedNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

// --- Warmup passes ---

func TestService_WarmupFrequentlyAccessedData(t *testing.T) {
	t.Parallel()

	t.Run("warms all entries", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		svc := warmup.NewService(client, &fakeSource{})
		ctx := context.Background()

		require.NoError(t, svc.WarmupFrequentlyAccessedData(ctx))

		settings, ok := cache.GetValue[map[string]string](ctx, client, "v1:settings")
		require.True(t, ok)
		assert.Equal(t, "USD", settings["currency"])

		tree, ok := cache.GetValue[[]warmup.Category](ctx, client, "v1:categories:tree")
		require.True(t, ok)
		assert.Len(t, tree, 1)

		assert.True(t, client.Exists(ctx, "v1:dashboard:metrics"))

		assert.InDelta(t, warmup.SettingsTTL.Seconds(), client.TTL(ctx, "v1:settings"), 2)
		assert.InDelta(t, warmup.CategoryTreeTTL.Seconds(), client.TTL(ctx, "v1:categories:tree"), 2)
		assert.InDelta(t, warmup.DashboardMetricsTTL.Seconds(), client.TTL(ctx, "v1:dashboard:metrics"), 2)
	})

	t.Run("failing source skips only its entry", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		svc := warmup.NewService(client, &fakeSource{failSettings: true})
		ctx := context.Background()

		err := svc.WarmupFrequentlyAccessedData(ctx)
		require.ErrorIs(t, err, warmup.ErrSource)
		require.ErrorIs(t, err, errSourceDown)

		assert.False(t, client.Exists(ctx, "v1:settings"))
		assert.True(t, client.Exists(ctx, "v1:categories:tree"))
		assert.True(t, client.Exists(ctx, "v1:dashboard:metrics"))
		assert.Equal(t, int64(2), client.Metrics().Sets)
	})

	t.Run("custom key version", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		svc := warmup.NewService(client, &fakeSource{}, warmup.WithKeyVersion("v2"))
		ctx := context.Background()

		require.NoError(t, svc.WarmupFrequentlyAccessedData(ctx))
		assert.True(t, client.Exists(ctx, warmup.SettingsKey(cachekey.WithVersion("v2"))))
		assert.False(t, client.Exists(ctx, warmup.SettingsKey()))
	})
}

func TestService_WarmupFeaturedProducts(t *testing.T) {
	t.Parallel()

	t.Run("warms list and each product", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		svc := warmup.NewService(client, &fakeSource{})
		ctx := context.Background()

		require.NoError(t, svc.WarmupFeaturedProducts(ctx))

		list, ok := cache.GetValue[[]warmup.Product](ctx, client, "v1:products:list:featured")
		require.True(t, ok)
		assert.Len(t, list, 2)

		p, ok := cache.GetValue[warmup.Product](ctx, client, "v1:products:42")
		require.True(t, ok)
		assert.Equal(t, "Desk Lamp", p.Name)
		assert.True(t, client.Exists(ctx, "v1:products:43"))
	})

	t.Run("source failure writes nothing", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		svc := warmup.NewService(client, &fakeSource{failFeatured: true})

		require.ErrorIs(t, svc.WarmupFeaturedProducts(context.Background()), errSourceDown)
		assert.Zero(t, client.Metrics().Sets)
	})
}

func TestService_WarmupAnalyticsData(t *testing.T) {
	t.Parallel()

	t.Run("warms trailing ranges", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		src := &fakeSource{}
		svc := warmup.NewService(client, src, warmup.WithClock(func() time.Time { return fixedNow }))
		ctx := context.Background()

		require.NoError(t, svc.WarmupAnalyticsData(ctx))
		assert.Equal(t, int64(2), src.analyticsCalls.Load())

		weekly := "v1:analytics:dashboard:from=2026-03-08:interval=daily:to=2026-03-15"
		monthly := "v1:analytics:dashboard:from=2026-02-13:interval=daily:to=2026-03-15"
		assert.True(t, client.Exists(ctx, weekly))
		assert.True(t, client.Exists(ctx, monthly))

		snap, ok := cache.GetValue[map[string]any](ctx, client, weekly)
		require.True(t, ok)
		assert.Equal(t, "2026-03-08", snap["from"])
	})

	t.Run("custom ranges", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		svc := warmup.NewService(client, &fakeSource{},
			warmup.WithClock(func() time.Time { return fixedNow }),
			warmup.WithAnalyticsRanges(1),
		)
		ctx := context.Background()

		require.NoError(t, svc.WarmupAnalyticsData(ctx))
		assert.True(t, client.Exists(ctx, warmup.AnalyticsKey(
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			warmup.AnalyticsInterval,
		)))
		assert.Equal(t, int64(1), client.Metrics().Sets)
	})

	t.Run("source failure is returned", func(t *testing.T) {
		t.Parallel()

		svc := warmup.NewService(newClient(t), &fakeSource{failAnalytics: true})
		require.ErrorIs(t, svc.WarmupAnalyticsData(context.Background()), warmup.ErrSource)
	})
}

// --- Keys ---

func TestKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "v1:settings", warmup.SettingsKey())
	assert.Equal(t, "v1:categories:tree", warmup.CategoryTreeKey())
	assert.Equal(t, "v1:dashboard:metrics", warmup.DashboardMetricsKey())
	assert.Equal(t, "v1:products:list:featured", warmup.FeaturedProductsKey())
	assert.Equal(t, "v1:products:42", warmup.ProductKey("42"))
	assert.Equal(t, "v1:products:list:limit=20:page=2",
		warmup.ProductListKey(cachekey.Params{"page": 2, "limit": 20}))

	t.Run("product named featured does not collide with the list", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, warmup.FeaturedProductsKey(), warmup.ProductKey("featured"))
	})

	t.Run("list keys fall under the product invalidation pattern", func(t *testing.T) {
		t.Parallel()

		pattern := cachekey.Pattern("products", "*")
		assert.Equal(t, "v1:products:*", pattern)
		assert.True(t, strings.HasPrefix(warmup.FeaturedProductsKey(), strings.TrimSuffix(pattern, "*")))
	})
}

// --- Scheduling ---

func TestService_Schedule(t *testing.T) {
	t.Parallel()

	t.Run("restart does not accumulate jobs", func(t *testing.T) {
		t.Parallel()

		svc := warmup.NewService(newClient(t), &fakeSource{})
		ctx := context.Background()

		require.NoError(t, svc.SchedulePeriodicWarmup(ctx))
		require.NoError(t, svc.SchedulePeriodicWarmup(ctx))
		assert.Equal(t, 2, svc.Scheduled())

		svc.Stop()
		assert.Zero(t, svc.Scheduled())

		// Stopping twice is a no-op.
		svc.Stop()
	})

	t.Run("rejects sub-second intervals", func(t *testing.T) {
		t.Parallel()

		svc := warmup.NewService(newClient(t), &fakeSource{}, warmup.WithFrequentInterval(time.Millisecond))
		require.ErrorIs(t, svc.SchedulePeriodicWarmup(context.Background()), warmup.ErrInvalidPeriod)
	})

	t.Run("start warms immediately and keeps warming", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		src := &fakeSource{failFeatured: true}
		svc := warmup.NewService(client, src,
			warmup.WithFrequentInterval(time.Second),
			warmup.WithAnalyticsInterval(time.Hour),
		)
		t.Cleanup(svc.Stop)
		ctx := context.Background()

		require.NoError(t, svc.Start(ctx))
		assert.True(t, client.Exists(ctx, "v1:settings"))
		assert.Equal(t, int64(2), src.analyticsCalls.Load())

		require.Eventually(t, func() bool {
			return src.settingsCalls.Load() >= 2
		}, 5*time.Second, 50*time.Millisecond, "frequent job should keep running despite failures")
	})
}

// --- FileSource ---

func TestFileSource(t *testing.T) {
	t.Parallel()

	fixture := []byte(`
settings:
  currency: USD
  tax_rate: 0.2
dashboard:
  orders_today: 5
analytics:
  revenue: 1200
categories:
  - id: "1"
    name: Lighting
    slug: lighting
    children:
      - id: "2"
        name: Lamps
        slug: lamps
featured_products:
  - id: "42"
    name: Desk Lamp
    price: 19.5
    stock: 3
`)

	src, err := warmup.ParseFixture(fixture)
	require.NoError(t, err)
	ctx := context.Background()

	settings, err := src.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", settings["currency"])

	tree, err := src.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "lamps", tree[0].Children[0].Slug)

	products, err := src.FeaturedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.InDelta(t, 19.5, products[0].Price, 0.001)

	dashboard, err := src.DashboardMetrics(ctx)
	require.NoError(t, err)
	assert.Contains(t, dashboard, "generated_at")

	snap, err := src.AnalyticsSnapshot(ctx, fixedNow.AddDate(0, 0, -7), fixedNow, "daily")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-08", snap["from"])
	assert.Equal(t, 1200, snap["revenue"])

	// Service over the fixture.
	client := newClient(t)
	svc := warmup.NewService(client, src)
	require.NoError(t, svc.WarmupFeaturedProducts(ctx))
	assert.True(t, client.Exists(ctx, "v1:products:42"))
}

func TestFileSource_Errors(t *testing.T) {
	t.Parallel()

	_, err := warmup.ParseFixture([]byte("settings: [unclosed"))
	require.ErrorIs(t, err, warmup.ErrFixtureParse)

	_, err = warmup.LoadFile("testdata/does-not-exist.yaml")
	require.ErrorIs(t, err, warmup.ErrFixtureRead)
}
