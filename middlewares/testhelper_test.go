package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
)

// newRequest builds a parsed pipeline request from a JSON body.
func newRequest(t *testing.T, body string, header ...string) (*internal.Request, *httptest.ResponseRecorder) {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()

	req, err := internal.NewRequest(rec, r, nil)
	require.NoError(t, err)
	return req, rec
}

// formRequest builds a parsed pipeline request from a urlencoded body.
func formRequest(t *testing.T, body string) *internal.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	req, err := internal.NewRequest(httptest.NewRecorder(), r, nil)
	require.NoError(t, err)
	return req
}
