package middlewares_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/middlewares"
)

func serveRecover(t *testing.T, h http.HandlerFunc, opts ...middlewares.RecoverOption) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	middlewares.Recover(opts...)(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("panic becomes a server error envelope", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, nil))

		rec := serveRecover(t, func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}, middlewares.WithRecoverLogger(log))

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		require.EqualValues(t, 500, env["code"])
		require.Equal(t, "Internal server error", env["message"])
		require.Contains(t, buf.String(), `"panic":"boom"`)
		require.Contains(t, buf.String(), `"stack"`)
	})

	t.Run("custom code and disabled stack", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, nil))

		rec := serveRecover(t, func(http.ResponseWriter, *http.Request) {
			panic(errors.New("bad"))
		},
			middlewares.WithRecoverLogger(log),
			middlewares.WithRecoverCode(5000),
			middlewares.WithRecoverDisablePrintStack(),
		)

		require.EqualValues(t, 5000, decodeEnvelope(t, rec)["code"])
		require.Contains(t, buf.String(), "panic recovered")
		require.NotContains(t, buf.String(), `"stack"`)
	})

	t.Run("partial response is left alone", func(t *testing.T) {
		t.Parallel()

		rec := serveRecover(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("partial"))
			panic("late")
		})
		require.Equal(t, "partial", rec.Body.String())
	})

	t.Run("passes through without panic", func(t *testing.T) {
		t.Parallel()

		rec := serveRecover(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		require.Equal(t, http.StatusTeapot, rec.Code)
		require.Empty(t, rec.Body.String())
	})

	t.Run("small stack size still logs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, nil))
		serveRecover(t, func(http.ResponseWriter, *http.Request) {
			panic(1)
		}, middlewares.WithRecoverLogger(log), middlewares.WithRecoverStackSize(64))

		require.Contains(t, buf.String(), `"stack":"goroutine`)
	})

	t.Run("abort handler panic is re-raised", func(t *testing.T) {
		t.Parallel()

		require.PanicsWithValue(t, http.ErrAbortHandler, func() {
			serveRecover(t, func(http.ResponseWriter, *http.Request) {
				panic(http.ErrAbortHandler)
			})
		})
	})
}
