package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL returns ErrEmptyConnectionURL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, "")
		require.ErrorIs(t, err, ErrEmptyConnectionURL)
		require.Nil(t, client)
	})

	t.Run("invalid URL returns ErrFailedToParseURL", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name string
			url  string
		}{
			{name: "http scheme", url: "http://localhost:6379"},
			{name: "no scheme", url: "localhost:6379"},
			{name: "invalid port", url: "redis://localhost:notaport"},
			{name: "invalid database", url: "redis://localhost:6379/notanumber"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				client, err := Open(ctx, tc.url)
				require.ErrorIs(t, err, ErrFailedToParseURL)
				require.Nil(t, client)
			})
		}
	})
}

func TestOpen_Miniredis(t *testing.T) {
	t.Parallel()

	t.Run("connects and passes healthcheck", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		ctx := context.Background()

		client, err := Open(ctx, "redis://"+mr.Addr()+"/0", WithRetry(1, time.Millisecond))
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		require.NoError(t, Healthcheck(client)(ctx))
		require.NoError(t, client.Set(ctx, "k", "v", 0).Err())

		val, err := mr.Get("k")
		require.NoError(t, err)
		require.Equal(t, "v", val)
	})

	t.Run("healthcheck fails after server stops", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		ctx := context.Background()

		client, err := Open(ctx, "redis://"+mr.Addr(), WithRetry(1, time.Millisecond))
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		mr.Close()

		err = Healthcheck(client)(ctx)
		require.ErrorIs(t, err, ErrHealthcheckFailed)
	})

	t.Run("unreachable server exhausts retries", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		start := time.Now()
		client, err := Open(context.Background(), "redis://"+addr,
			WithRetry(2, 10*time.Millisecond),
			WithDialTimeout(100*time.Millisecond),
		)
		require.ErrorIs(t, err, ErrConnectionFailed)
		require.Nil(t, client)
		require.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("cancelled context aborts retries", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := Open(ctx, "redis://"+addr, WithRetry(5, 10*time.Second))
		require.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("unreachable server yields a client when ping is optional", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		ctx := context.Background()
		client, err := Open(ctx, "redis://"+addr,
			WithRetry(1, time.Millisecond),
			WithDialTimeout(100*time.Millisecond),
			WithRequirePing(false),
		)
		require.NoError(t, err)
		require.NotNil(t, client)
		t.Cleanup(func() { _ = client.Close() })

		require.ErrorIs(t, Healthcheck(client)(ctx), ErrHealthcheckFailed)
	})

	t.Run("client recovers once the server is back", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		ctx := context.Background()
		client, err := Open(ctx, "redis://"+addr,
			WithRetry(1, time.Millisecond),
			WithDialTimeout(100*time.Millisecond),
			WithRequirePing(false),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		require.NoError(t, mr.Restart())
		require.NoError(t, Healthcheck(client)(ctx))
	})
}

func TestOpenConfig(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := OpenConfig(ctx, Config{
		URL:           "redis://" + mr.Addr() + "/0",
		PoolSize:      4,
		RetryAttempts: 1,
		RetryInterval: time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(ctx).Err())
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	for _, opt := range (Config{
		PoolSize:      20,
		MinIdleConns:  2,
		ReadTimeout:   time.Second,
		RetryAttempts: 7,
		RetryInterval: 3 * time.Second,
	}).Options() {
		opt(opts)
	}

	require.Equal(t, 20, opts.poolSize)
	require.Equal(t, 2, opts.minIdleConns)
	require.Equal(t, time.Second, opts.readTimeout)
	require.Equal(t, 7, opts.retryAttempts)
	require.Equal(t, 3*time.Second, opts.retryInterval)

	// Zero values keep the defaults.
	require.Equal(t, 500*time.Millisecond, opts.writeTimeout)
	require.Equal(t, 10*time.Minute, opts.maxIdleTime)

	// The cache fails open unless a startup ping is required.
	require.False(t, opts.requirePing)
}

func TestOpenConfig_UnreachableServer(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := Config{
		URL:           "redis://" + addr,
		RetryAttempts: 1,
		RetryInterval: time.Millisecond,
		DialTimeout:   100 * time.Millisecond,
	}
	ctx := context.Background()

	client, err := OpenConfig(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()

	cfg.RequirePing = true
	client, err = OpenConfig(ctx, cfg)
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.Nil(t, client)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
	require.ErrorIs(t, err, ErrNilClient)
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	t.Run("calls Close on the client", func(t *testing.T) {
		t.Parallel()

		closer := &mockCloser{}
		require.NoError(t, Shutdown(closer)(context.Background()))
		require.True(t, closer.closed)
	})

	t.Run("propagates Close error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("close error")
		closer := &mockCloser{err: expectedErr}

		err := Shutdown(closer)(context.Background())
		require.Equal(t, expectedErr, err)
		require.True(t, closer.closed)
	})
}

func TestWait_ContextCancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := wait(ctx, 10*time.Second)

		require.Equal(t, context.Canceled, err)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("timeout completes normally", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		require.NoError(t, wait(context.Background(), 50*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		opts := defaultOptions()
		require.Equal(t, "shopcache", opts.clientName)
		require.Equal(t, 10, opts.poolSize)
		require.Equal(t, 5, opts.minIdleConns)
		require.Equal(t, 3, opts.retryAttempts)
		require.Equal(t, 2*time.Second, opts.retryInterval)
		require.Equal(t, 500*time.Millisecond, opts.readTimeout)
		require.Equal(t, 2*time.Second, opts.dialTimeout)
		require.NotNil(t, opts.logger)
	})

	t.Run("options applied in order", func(t *testing.T) {
		t.Parallel()

		opts := defaultOptions()
		WithPoolSize(20)(opts)
		WithPoolSize(30)(opts)
		WithClientName("worker")(opts)
		WithLogger(nil)(opts)

		require.Equal(t, 30, opts.poolSize)
		require.Equal(t, "worker", opts.clientName)
		require.NotNil(t, opts.logger)
	})
}

// mockCloser is a test double for io.Closer
type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

var _ io.Closer = (*mockCloser)(nil)
