package backends_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
)

func newRequest(t *testing.T, header ...string) *internal.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/", strings.NewReader(`{"service":"articles","action":"create"}`))
	r.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	req, err := internal.NewRequest(httptest.NewRecorder(), r, nil)
	require.NoError(t, err)
	return req
}
