package internal_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
)

// countingBackend records how often it and its hooks run.
type countingBackend struct {
	auth     *internal.AuthContext
	err      error
	name     string
	services []string
	calls    int
	before   int
	after    int
}

func (b *countingBackend) Authenticate(*internal.Request) (*internal.AuthContext, error) {
	b.calls++
	return b.auth, b.err
}

func (b *countingBackend) BeforeRun(*internal.Request) { b.before++ }

func (b *countingBackend) AfterRun(*internal.Request) { b.after++ }

func (b *countingBackend) Name() string { return b.name }

func (b *countingBackend) LimitServices() []string { return b.services }

func TestAuthChainFirstUserWins(t *testing.T) {
	t.Parallel()

	anon := &countingBackend{name: "anon"}
	emptyUser := &countingBackend{name: "empty", auth: &internal.AuthContext{}}
	jwt := &countingBackend{name: "jwt", auth: &internal.AuthContext{User: "u1", Permissions: []string{"read"}}}
	never := &countingBackend{name: "never", auth: internal.NewAuthContext("u2")}

	chain := internal.NewAuthChain(anon, emptyUser, jwt, never)
	req := jsonRequest(t, `{"service":"articles","action":"list"}`)

	state, err := chain.Handle(req)
	require.NoError(t, err)
	require.Equal(t, internal.AuthAuthenticated, state)
	require.True(t, req.IsAuthenticated())
	require.Equal(t, "u1", req.Auth().User)

	for _, b := range []*countingBackend{anon, emptyUser, jwt} {
		require.Equal(t, 1, b.calls, b.name)
		require.Equal(t, 1, b.before, b.name)
		require.Equal(t, 1, b.after, b.name)
	}
	require.Zero(t, never.calls)
	require.Zero(t, never.before)
}

func TestAuthChainExhausted(t *testing.T) {
	t.Parallel()

	a := &countingBackend{name: "a"}
	b := &countingBackend{name: "b"}
	req := jsonRequest(t, `{"service":"articles"}`)

	state, err := internal.NewAuthChain(a, b).Handle(req)
	require.NoError(t, err)
	require.Equal(t, internal.AuthExhausted, state)
	require.False(t, req.IsAuthenticated())
	require.Equal(t, 1, a.calls)
	require.Equal(t, 1, b.calls)
}

func TestAuthChainServiceLimit(t *testing.T) {
	t.Parallel()

	limited := &countingBackend{name: "limited", services: []string{"users"}, auth: internal.NewAuthContext("u")}
	req := jsonRequest(t, `{"service":"articles"}`)

	state, err := internal.NewAuthChain(limited).Handle(req)
	require.NoError(t, err)
	require.Equal(t, internal.AuthExhausted, state)
	require.Zero(t, limited.calls)
	require.Zero(t, limited.before, "hooks of skipped backends must not run")
}

func TestAuthChainBackendError(t *testing.T) {
	t.Parallel()

	boom := errors.New("token store down")
	failing := &countingBackend{name: "failing", err: boom}
	next := &countingBackend{name: "next", auth: internal.NewAuthContext("u")}

	_, err := internal.NewAuthChain(failing, next).Handle(jsonRequest(t, `{}`))
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, failing.after)
	require.Zero(t, next.calls)
}

func TestAuthChainAlreadyAuthenticated(t *testing.T) {
	t.Parallel()

	b := &countingBackend{name: "b"}
	req := jsonRequest(t, `{}`)
	req.SetAuth(internal.NewAuthContext("preset"))

	state, err := internal.NewAuthChain(b).Handle(req)
	require.NoError(t, err)
	require.Equal(t, internal.AuthAuthenticated, state)
	require.Zero(t, b.calls)
}

func TestAuthChainPositioning(t *testing.T) {
	t.Parallel()

	chain := internal.NewAuthChain(&countingBackend{name: "jwt"}, &countingBackend{name: "token"})
	chain.AddBefore("jwt", &countingBackend{name: "session"})
	chain.AddAfter("jwt", &countingBackend{name: "apikey"})

	require.Equal(t, []string{"session", "jwt", "apikey", "token"}, chain.Names())
}

func TestAuthBackendFunc(t *testing.T) {
	t.Parallel()

	chain := internal.NewAuthChain(internal.AuthBackendFunc(func(r *internal.Request) (*internal.AuthContext, error) {
		if r.Header("Authorization") == "" {
			return nil, nil
		}
		return internal.NewAuthContext("u"), nil
	}))

	state, err := chain.Handle(jsonRequest(t, `{}`))
	require.NoError(t, err)
	require.Equal(t, internal.AuthExhausted, state)
	require.Equal(t, "exhausted", state.String())
}

func TestAuthContextPermissions(t *testing.T) {
	t.Parallel()

	auth := internal.NewAuthContext("u", "write", "read", "read")
	require.Equal(t, []string{"read", "write"}, auth.Permissions)
	require.True(t, auth.Can("read"))
	require.True(t, auth.CanAll("read", "write"))
	require.False(t, auth.CanAll("read", "admin"))
	require.True(t, auth.CanAll())

	var anon *internal.AuthContext
	require.False(t, anon.Can("read"))
}
