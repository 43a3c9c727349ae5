package internal_test

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/keyed"
)

func TestResponseMarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("success without message", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(internal.Success(keyed.Of("id", 1, "title", "x")))
		require.NoError(t, err)
		require.JSONEq(t, `{"code":0,"message":null,"data":{"id":1,"title":"x"},"extra":null}`, string(data))
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(internal.Fail(404, "Field id is required"))
		require.NoError(t, err)
		require.JSONEq(t, `{"code":404,"message":"Field id is required","data":null,"extra":null}`, string(data))
	})

	t.Run("data order is preserved", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(internal.Success(keyed.Of("z", 1, "a", 2)))
		require.NoError(t, err)
		require.Contains(t, string(data), `"data":{"z":1,"a":2}`)
	})
}

func TestResponseWrite(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	resp := internal.Fail(500, "boom").WithExtra(map[string]any{"trace": "abc"})
	require.NoError(t, resp.Write(w))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	require.JSONEq(t, `{"code":500,"message":"boom","data":null,"extra":{"trace":"abc"}}`, w.Body.String())
}

func TestResponseWriteUnencodable(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	require.Error(t, internal.Success(math.NaN()).Write(w))
	require.Zero(t, w.Body.Len())
	require.Empty(t, w.Header().Get("Content-Type"))
}

func TestResponseIsSuccess(t *testing.T) {
	t.Parallel()

	require.True(t, internal.Success(nil).IsSuccess())
	require.False(t, internal.Fail(404, "x").IsSuccess())
	require.False(t, (*internal.Response)(nil).IsSuccess())
	require.Equal(t, "done", internal.NewResponse(0, "", nil, nil).WithMessage("done").Message)
}
