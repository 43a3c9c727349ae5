package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/pkg/logger"
)

type ctxKey struct{}

func extractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)
	return slog.String("request_id", v), ok
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with extractor", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Output: &buf}, extractor)

		ctx := context.WithValue(context.Background(), ctxKey{}, "abc")
		log.InfoContext(ctx, "hello", slog.Int("code", 0))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "hello", entry["msg"])
		require.Equal(t, "abc", entry["request_id"])
	})

	t.Run("extractor skipped without value", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Output: &buf}, extractor, nil)
		log.Info("hello")

		require.NotContains(t, buf.String(), "request_id")
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Level: "warn", Output: &buf})
		log.Info("dropped")
		require.Zero(t, buf.Len())

		log.Warn("kept")
		require.Contains(t, buf.String(), "kept")
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Format: "text", Output: &buf})
		log.Info("hello")
		require.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("with attrs keeps extractors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Output: &buf}, extractor).With("component", "api")

		ctx := context.WithValue(context.Background(), ctxKey{}, "xyz")
		log.InfoContext(ctx, "hello")
		require.Contains(t, buf.String(), `"component":"api"`)
		require.Contains(t, buf.String(), `"request_id":"xyz"`)
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestNewNope(t *testing.T) {
	t.Parallel()
	require.False(t, logger.NewNope().Enabled(context.Background(), slog.LevelError))
}
