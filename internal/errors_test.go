package internal_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
)

func TestIsError(t *testing.T) {
	t.Parallel()

	t.Run("direct", func(t *testing.T) {
		t.Parallel()
		require.True(t, internal.IsError(internal.ErrNotFound("missing"), internal.KindNotFound))
	})

	t.Run("wrapped", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("outer: %w", internal.ErrClient("bad"))
		require.True(t, internal.IsError(err, internal.KindClient))
		require.False(t, internal.IsError(err, internal.KindServer))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsError(errors.New("boom"), internal.KindServer))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsError(nil))
	})
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := internal.ErrServer("Failed to save", internal.WithCause(cause))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "Failed to save", err.Error())
}

func TestErrFieldRequired(t *testing.T) {
	t.Parallel()

	err := internal.ErrFieldRequired("id")
	require.Equal(t, "Field id is required", err.Message)
	require.Equal(t, internal.KindClient, err.Kind)
}

func TestErrorCodesEnvelope(t *testing.T) {
	t.Parallel()

	codes := internal.DefaultErrorCodes()

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"client", internal.ErrClient("bad input"), 404, "bad input"},
		{"not found", internal.ErrNotFound("no such thing"), 404, "no such thing"},
		{"unauthenticated", internal.ErrUnauthenticated("login"), 401, "login"},
		{"unauthorized", internal.ErrUnauthorized("nope"), 403, "nope"},
		{"server", internal.ErrServer("oops"), 500, "oops"},
		{"explicit code", internal.NewError(4221, "custom"), 4221, "custom"},
		{"pinned code", internal.ErrClient("bad", internal.WithCode(422)), 422, "bad"},
		{"plain error hides its text", errors.New("pq: relation \"secrets\" does not exist"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := codes.Envelope(tt.err)
			require.Equal(t, tt.code, resp.Code)
			require.Equal(t, tt.message, resp.Message)
			require.Nil(t, resp.Data)
		})
	}
}

func TestErrorCodesCode(t *testing.T) {
	t.Parallel()

	codes := internal.ErrorCodes{Client: 400}
	require.Equal(t, 400, codes.Code(internal.KindClient))
	require.Equal(t, 0, codes.Code(internal.KindNotFound))
}

func TestErrorKindString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "client", internal.KindClient.String())
	require.Equal(t, "not_found", internal.KindNotFound.String())
	require.Equal(t, "unauthenticated", internal.KindUnauthenticated.String())
	require.Equal(t, "unauthorized", internal.KindUnauthorized.String())
	require.Equal(t, "server", internal.KindServer.String())
}
