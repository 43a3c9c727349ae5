package generics_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/generics"
	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/keyed"
)

func TestServiceCapabilities(t *testing.T) {
	t.Parallel()

	g := newGeneric(newFakeExec(), generics.Config{})

	require.Equal(t,
		[]string{"create", "delete", "details", "list", "random", "retrieve", "update"},
		g.Service().Actions(),
	)
	require.Equal(t,
		[]string{"details", "list", "random", "retrieve"},
		g.Service(generics.ReadOnly...).Actions(),
	)
	require.Equal(t,
		[]string{"create", "delete", "update"},
		g.Service(generics.Writable...).Actions(),
	)
}

func TestServiceDispatch(t *testing.T) {
	t.Parallel()

	g := newGeneric(newFakeExec(articles(12)...), generics.Config{ListColumns: []string{"id", "title"}})
	sw := internal.NewSwitch("v1").Register("articles", g.Service(generics.All...).Apply(
		internal.ActionsRequiringAuth("delete"),
	))
	d := internal.NewDispatcher(sw, internal.DefaultErrorCodes(), nil)

	t.Run("paginated list carries page metadata", func(t *testing.T) {
		t.Parallel()

		resp := d.Process(request(t, `{"service":"articles","action":"list","limit":10,"offset":0}`))
		require.Zero(t, resp.Code)

		data, err := json.Marshal(resp)
		require.NoError(t, err)

		var env struct {
			Data  []map[string]any `json:"data"`
			Extra map[string]any   `json:"extra"`
		}
		require.NoError(t, json.Unmarshal(data, &env))
		require.Len(t, env.Data, 10)
		require.Equal(t, map[string]any{
			"limit":       float64(10),
			"offset":      float64(0),
			"total":       float64(12),
			"next_offset": float64(10),
			"prev_offset": nil,
		}, env.Extra)
	})

	t.Run("details alias", func(t *testing.T) {
		t.Parallel()

		resp := d.Process(request(t, `{"service":"articles","action":"details","id":3}`))
		require.Zero(t, resp.Code)
	})

	t.Run("delete without primary key", func(t *testing.T) {
		t.Parallel()

		req := request(t, `{"service":"articles","action":"delete"}`)
		req.SetAuth(internal.NewAuthContext("u"))

		resp := d.Process(req)
		require.Equal(t, 404, resp.Code)
		require.Equal(t, "Field id is required", resp.Message)
	})

	t.Run("guards still apply", func(t *testing.T) {
		t.Parallel()

		resp := d.Process(request(t, `{"service":"articles","action":"delete","id":1}`))
		require.Equal(t, 401, resp.Code)
	})

	t.Run("aborted create answers success without data", func(t *testing.T) {
		t.Parallel()

		aborting := newGeneric(newFakeExec(), generics.Config{}, generics.WithHooks(generics.Hooks{
			PreCreate: func(*internal.Request, *keyed.Map) (*keyed.Map, bool, error) { return nil, false, nil },
		}))
		resp, err := aborting.CreateAction(request(t, `{"title":"x"}`))
		require.NoError(t, err)
		require.True(t, resp.IsSuccess())
		require.Nil(t, resp.Data)
	})
}
