package server_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shopcache/internal/server"
)

var errHook = errors.New("hook failed")

type hookRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (h *hookRecorder) hook(name string, err error) func(context.Context) error {
	return func(ctx context.Context) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.calls = append(h.calls, name)
		return err
	}
}

func (h *hookRecorder) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func start(t *testing.T, handler http.Handler, opts ...server.Option) (string, context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan string, 1)
	done := make(chan error, 1)

	opts = append([]server.Option{
		server.WithAddress("127.0.0.1:0"),
		server.WithReady(func(addr string) { addrCh <- addr }),
	}, opts...)

	go func() { done <- server.New(handler, opts...).Run(ctx) }()

	select {
	case addr := <-addrCh:
		return addr, cancel, done
	case err := <-done:
		cancel()
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not start")
	}
	return "", cancel, done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
		return nil
	}
}

// --- Run ---

func TestRun_ServesAndShutsDown(t *testing.T) {
	t.Parallel()

	rec := &hookRecorder{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	addr, cancel, done := start(t, handler,
		server.WithShutdownHook(rec.hook("warmup", nil)),
		server.WithShutdownHook(rec.hook("redis", nil)),
		server.WithShutdownHook(nil),
	)

	resp, err := http.Get("http://" + addr + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	cancel()
	require.NoError(t, wait(t, done))
	assert.Equal(t, []string{"warmup", "redis"}, rec.names())
}

func TestRun_HookErrorsAreJoined(t *testing.T) {
	t.Parallel()

	rec := &hookRecorder{}
	_, cancel, done := start(t, http.NotFoundHandler(),
		server.WithShutdownHook(rec.hook("first", errHook)),
		server.WithShutdownHook(rec.hook("second", nil)),
	)

	cancel()
	err := wait(t, done)
	require.ErrorIs(t, err, errHook)
	// A failing hook does not stop the ones after it.
	assert.Equal(t, []string{"first", "second"}, rec.names())
}

func TestRun_ListenFailureRunsHooks(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	rec := &hookRecorder{}
	srv := server.New(http.NotFoundHandler(),
		server.WithAddress(ln.Addr().String()),
		server.WithShutdownTimeout(time.Second),
		server.WithShutdownHook(rec.hook("redis", nil)),
	)

	err = srv.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"redis"}, rec.names())
}
