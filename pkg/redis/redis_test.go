package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/pkg/redis"
)

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty and foreign URLs", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Options(redis.Config{})
		require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

		for _, url := range []string{"http://localhost:6379", "localhost:6379", "postgres://x"} {
			_, err := redis.Options(redis.Config{URL: url})
			require.ErrorIs(t, err, redis.ErrFailedToParseURL, url)
		}
	})

	t.Run("applies pool settings", func(t *testing.T) {
		t.Parallel()

		opts, err := redis.Options(redis.Config{
			URL:          "redis://:secret@cache.internal:6380/2",
			PoolSize:     25,
			MinIdleConns: 3,
			MaxIdleTime:  time.Minute,
			ReadTimeout:  time.Second,
		})
		require.NoError(t, err)
		require.Equal(t, "cache.internal:6380", opts.Addr)
		require.Equal(t, 2, opts.DB)
		require.Equal(t, "secret", opts.Password)
		require.Equal(t, 25, opts.PoolSize)
		require.Equal(t, 3, opts.MinIdleConns)
		require.Equal(t, time.Minute, opts.ConnMaxIdleTime)
		require.Equal(t, time.Second, opts.ReadTimeout)
	})

	t.Run("TLS scheme", func(t *testing.T) {
		t.Parallel()

		opts, err := redis.Options(redis.Config{URL: "rediss://localhost:6379/0"})
		require.NoError(t, err)
		require.NotNil(t, opts.TLSConfig)
	})
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("gives up when the context ends", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		_, err := redis.Connect(ctx, redis.Config{
			URL:           "redis://127.0.0.1:1/0",
			RetryAttempts: 5,
			RetryInterval: time.Second,
			DialTimeout:   50 * time.Millisecond,
		})
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
	})
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestShutdownAndHealthcheck(t *testing.T) {
	t.Parallel()

	require.NoError(t, redis.Shutdown(closer{})(context.Background()))
	boom := errors.New("boom")
	require.ErrorIs(t, redis.Shutdown(closer{err: boom})(context.Background()), boom)

	require.ErrorIs(t, redis.Healthcheck(nil)(context.Background()), redis.ErrHealthcheckFailed)
}
