package internal_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
)

func TestNewRequest(t *testing.T) {
	t.Parallel()

	t.Run("json payload", func(t *testing.T) {
		t.Parallel()

		req := jsonRequest(t, `{"SERVICE":"articles","ACTION":"list","limit":10,"search":{"q":"go"}}`)
		require.Equal(t, "articles", req.Service())
		require.Equal(t, "list", req.Action())

		limit, ok := req.Payload().Int("limit")
		require.True(t, ok)
		require.Equal(t, 10, limit)

		search, ok := req.Payload().Sub("search")
		require.True(t, ok)
		require.Equal(t, "go", search.Value("q"))
		require.Equal(t, []string{"SERVICE", "ACTION", "limit", "search"}, req.Payload().Keys())
	})

	t.Run("empty json body", func(t *testing.T) {
		t.Parallel()

		req := jsonRequest(t, "")
		require.NotNil(t, req.Payload())
		require.Zero(t, req.Payload().Len())
		require.Empty(t, req.Service())
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"service":`))
		r.Header.Set("Content-Type", "application/json")
		_, err := internal.NewRequest(httptest.NewRecorder(), r, nil)
		require.True(t, internal.IsError(err, internal.KindClient))
		require.Equal(t, "Invalid JSON payload", err.Error())
	})

	t.Run("json array is rejected", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1,2]`))
		r.Header.Set("Content-Type", "application/json")
		_, err := internal.NewRequest(httptest.NewRecorder(), r, nil)
		require.True(t, internal.IsError(err, internal.KindClient))
	})

	t.Run("url encoded form", func(t *testing.T) {
		t.Parallel()

		form := url.Values{"service": {"articles"}, "action": {"create"}, "tag": {"a", "b"}}
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req := httpRequest(t, r)

		require.Equal(t, "create", req.Action())
		tags, ok := req.Payload().Strings("tag")
		require.True(t, ok)
		require.Equal(t, []string{"a", "b"}, tags)
	})

	t.Run("query string", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/?service=articles&action=retrieve&id=7", nil)
		req := httpRequest(t, r)

		require.Equal(t, "articles", req.Service())
		id, ok := req.Payload().Int("id")
		require.True(t, ok)
		require.Equal(t, 7, id)
	})

	t.Run("multipart with file", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("service", "articles"))
		require.NoError(t, mw.WriteField("action", "create"))
		fw, err := mw.CreateFormFile("cover", "cover.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/", &buf)
		r.Header.Set("Content-Type", mw.FormDataContentType())
		req := httpRequest(t, r)

		require.Equal(t, "create", req.Action())
		fh, ok := req.File("cover")
		require.True(t, ok)
		require.Equal(t, "cover.png", fh.Filename)

		_, ok = req.File("missing")
		require.False(t, ok)
	})

	t.Run("invalid content type", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		r.Header.Set("Content-Type", "application/json; =")
		_, err := internal.NewRequest(httptest.NewRecorder(), r, nil)
		require.True(t, internal.IsError(err, internal.KindClient))
	})
}

func TestRequestAuth(t *testing.T) {
	t.Parallel()

	req := jsonRequest(t, `{}`)
	require.NotNil(t, req.Auth())
	require.False(t, req.IsAuthenticated())

	req.SetAuth(&internal.AuthContext{User: "u1"})
	require.False(t, req.IsAuthenticated(), "authenticated flag must be set")

	req.SetAuth(internal.NewAuthContext("u1", "read"))
	require.True(t, req.IsAuthenticated())
	require.True(t, req.Auth().Can("read"))
}

func TestRequestValuesAndHeaders(t *testing.T) {
	t.Parallel()

	type key struct{}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Tenant", "acme")
	req, err := internal.NewRequest(w, r, nil)
	require.NoError(t, err)

	req.Set(key{}, "value")
	require.Equal(t, "value", req.Get(key{}))
	require.Equal(t, "value", req.Context().Value(key{}))
	require.Equal(t, "acme", req.Header("X-Tenant"))

	req.SetHeader("X-Request-ID", "abc")
	require.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestRequestFinish(t *testing.T) {
	t.Parallel()

	req := jsonRequest(t, `{}`)
	var order []int
	req.OnFinish(func() { order = append(order, 1) })
	req.OnFinish(nil)
	req.OnFinish(func() { order = append(order, 2) })

	req.Finish()
	req.Finish()
	require.Equal(t, []int{2, 1}, order)
}
