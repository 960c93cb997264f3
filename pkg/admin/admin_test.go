package admin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shopcache/pkg/admin"
	"github.com/dmitrymomot/shopcache/pkg/cache"
	"github.com/dmitrymomot/shopcache/pkg/monitor"
)

var errWarm = errors.New("source down")

type fakeWarmer struct {
	err   error
	calls []string
}

func (f *fakeWarmer) WarmupFrequentlyAccessedData(context.Context) error {
	f.calls = append(f.calls, "frequent")
	return f.err
}

func (f *fakeWarmer) WarmupFeaturedProducts(context.Context) error {
	f.calls = append(f.calls, "featured")
	return f.err
}

func (f *fakeWarmer) WarmupAnalyticsData(context.Context) error {
	f.calls = append(f.calls, "analytics")
	return f.err
}

// plainStore hides the optional capabilities of the wrapped store.
type plainStore struct {
	cache.Store
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Success bool            `json:"success"`
}

func newServer(t *testing.T, store cache.Store, opts ...admin.Option) (*httptest.Server, *cache.Client) {
	t.Helper()

	client := cache.NewClient(store)
	h := admin.NewHandler(client, monitor.NewService(client), opts...)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return srv, client
}

func newMemory(t *testing.T) *cache.Memory {
	t.Helper()

	m := cache.NewMemory()
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func do(t *testing.T, srv *httptest.Server, method, path string) (int, envelope) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	return resp.StatusCode, env
}

// --- Metrics ---

func TestAdmin_Metrics(t *testing.T) {
	t.Parallel()

	srv, client := newServer(t, newMemory(t))
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	_, _ = client.Get(ctx, "k")
	_, _ = client.Get(ctx, "missing")

	status, env := do(t, srv, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var m cache.Metrics
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, int64(1), m.Hits)
	assert.Equal(t, int64(1), m.Misses)
	assert.Equal(t, int64(2), m.TotalRequests)
	assert.InDelta(t, 50.0, m.HitRate, 0.001)

	status, env = do(t, srv, http.MethodDelete, "/metrics/reset")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Message)
	assert.Equal(t, cache.Metrics{}, client.Metrics())
}

// --- Health, report and memory ---

func TestAdmin_HealthAndReport(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, newMemory(t))

	status, env := do(t, srv, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, status)

	var h monitor.Health
	require.NoError(t, json.Unmarshal(env.Data, &h))
	assert.True(t, h.Available)
	assert.Equal(t, []string{monitor.RecommendNotWired}, h.Recommendations)

	status, env = do(t, srv, http.MethodGet, "/report")
	require.Equal(t, http.StatusOK, status)

	var r monitor.Report
	require.NoError(t, json.Unmarshal(env.Data, &r))
	assert.Contains(t, r.Summary, "Cache status: healthy")
}

func TestAdmin_Memory(t *testing.T) {
	t.Parallel()

	t.Run("reports store memory", func(t *testing.T) {
		t.Parallel()

		srv, client := newServer(t, newMemory(t))
		require.NoError(t, client.Set(context.Background(), "key", "value", time.Minute))

		status, env := do(t, srv, http.MethodGet, "/memory")
		require.Equal(t, http.StatusOK, status)

		var info cache.MemoryInfo
		require.NoError(t, json.Unmarshal(env.Data, &info))
		assert.Positive(t, info.UsedBytes)
	})

	t.Run("unsupported store fails", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, plainStore{Store: newMemory(t)})

		status, env := do(t, srv, http.MethodGet, "/memory")
		require.Equal(t, http.StatusInternalServerError, status)
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Error)
	})
}

// --- Warmup ---

func TestAdmin_Warmup(t *testing.T) {
	t.Parallel()

	t.Run("routes call the warmer", func(t *testing.T) {
		t.Parallel()

		w := &fakeWarmer{}
		srv, _ := newServer(t, newMemory(t), admin.WithWarmer(w))

		for _, path := range []string{"/warmup", "/warmup/featured-products", "/warmup/analytics"} {
			status, env := do(t, srv, http.MethodPost, path)
			require.Equal(t, http.StatusOK, status, path)
			assert.True(t, env.Success)
			assert.NotEmpty(t, env.Message)
		}

		assert.Equal(t, []string{"frequent", "featured", "analytics"}, w.calls)
	})

	t.Run("warmer failure is a 500", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, newMemory(t), admin.WithWarmer(&fakeWarmer{err: errWarm}))

		status, env := do(t, srv, http.MethodPost, "/warmup")
		require.Equal(t, http.StatusInternalServerError, status)
		assert.False(t, env.Success)
		assert.Equal(t, errWarm.Error(), env.Error)
	})

	t.Run("no warmer configured", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, newMemory(t))

		status, env := do(t, srv, http.MethodPost, "/warmup/analytics")
		require.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, admin.ErrWarmupDisabled.Error(), env.Error)
	})
}

// --- Clear and configure ---

func TestAdmin_Clear(t *testing.T) {
	t.Parallel()

	srv, client := newServer(t, newMemory(t))
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "v1:a", 1, time.Minute))
	require.NoError(t, client.Set(ctx, "v1:b", 2, time.Minute))

	status, env := do(t, srv, http.MethodDelete, "/clear")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	assert.False(t, client.Exists(ctx, "v1:a"))
	assert.False(t, client.Exists(ctx, "v1:b"))
}

func TestAdmin_ConfigureLRU(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory(cache.WithEvictionPolicy(cache.PolicyNoEviction))
	t.Cleanup(func() { _ = mem.Close() })
	srv, client := newServer(t, mem)

	status, env := do(t, srv, http.MethodPost, "/configure/lru")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	info, err := client.MemoryUsage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cache.PolicyAllKeysLRU, info.Policy)
}

func TestAdmin_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, newMemory(t))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/clear", nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
