package internal_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
)

// jsonRequest builds a Request from a JSON body.
func jsonRequest(t *testing.T, body string) *internal.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	req, err := internal.NewRequest(httptest.NewRecorder(), r, nil)
	require.NoError(t, err)
	return req
}

// httpRequest builds a Request from an arbitrary http.Request.
func httpRequest(t *testing.T, r *http.Request) *internal.Request {
	t.Helper()

	req, err := internal.NewRequest(httptest.NewRecorder(), r, nil)
	require.NoError(t, err)
	return req
}
