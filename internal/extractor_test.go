package internal_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	t.Run("empty sources returns false", func(t *testing.T) {
		t.Parallel()

		v, ok := internal.NewExtractor().Extract(jsonRequest(t, `{}`))
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("first match wins", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/?token=from-query", strings.NewReader(`{"token":"from-payload"}`))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("X-Token", "from-header")
		req := httpRequest(t, r)

		ext := internal.NewExtractor(
			internal.FromHeader("X-Missing"),
			internal.FromPayload("token"),
			internal.FromQuery("token"),
			internal.FromHeader("X-Token"),
		)
		v, ok := ext.Extract(req)
		require.True(t, ok)
		require.Equal(t, "from-payload", v)
	})

	t.Run("blank values are skipped", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/?token=+++", nil)
		r.Header.Set("X-Token", "abc")
		req := httpRequest(t, r)

		v, ok := internal.NewExtractor(internal.FromQuery("token"), internal.FromHeader("X-Token")).Extract(req)
		require.True(t, ok)
		require.Equal(t, "abc", v)
	})
}

func TestFromCookie(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "s-1"})
	req := httpRequest(t, r)

	v, ok := internal.FromCookie("session")(req)
	require.True(t, ok)
	require.Equal(t, "s-1", v)

	_, ok = internal.FromCookie("missing")(req)
	require.False(t, ok)
}

func TestFromBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc.def", "abc.def", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"basic scheme", "Basic dXNlcg==", "", false},
		{"empty token", "Bearer   ", "", false},
		{"missing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			v, ok := internal.FromBearerToken()(httpRequest(t, r))
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, v)
		})
	}
}
