package internal

import (
	"slices"

	"github.com/dmitrymomot/pionia/pkg/keyed"
)

// AuthContext is the identity attached to a request by an auth backend.
// It lives for a single request.
type AuthContext struct {
	// User is the opaque identity; nil means anonymous.
	User any

	// Extra carries additional claims.
	Extra *keyed.Map

	// Permissions held by the user, with set semantics.
	Permissions []string

	Authenticated bool
}

// NewAuthContext creates an authenticated context for user.
func NewAuthContext(user any, permissions ...string) *AuthContext {
	return &AuthContext{
		User:          user,
		Authenticated: user != nil,
		Permissions:   slices.Compact(slices.Sorted(slices.Values(permissions))),
		Extra:         keyed.New(),
	}
}

// Can reports whether the context holds perm.
func (a *AuthContext) Can(perm string) bool {
	if a == nil {
		return false
	}
	return slices.Contains(a.Permissions, perm)
}

// CanAll reports whether the context holds every one of perms.
func (a *AuthContext) CanAll(perms ...string) bool {
	for _, p := range perms {
		if !a.Can(p) {
			return false
		}
	}
	return true
}

// AuthBackend resolves an identity from a request.
// Returning (nil, nil), or a context without a user, passes to the next backend.
// Returning an error aborts the request.
type AuthBackend interface {
	Authenticate(r *Request) (*AuthContext, error)
}

// AuthHooks is implemented by backends that need to run code around Authenticate.
// Both hooks run for every backend that is eligible for the request, whatever it returns.
type AuthHooks interface {
	BeforeRun(r *Request)
	AfterRun(r *Request)
}

// AuthBackendFunc adapts a function to AuthBackend.
type AuthBackendFunc func(r *Request) (*AuthContext, error)

func (f AuthBackendFunc) Authenticate(r *Request) (*AuthContext, error) {
	return f(r)
}

// AuthState is the outcome of running the auth chain.
type AuthState int

const (
	// AuthPending means no backend has run yet.
	AuthPending AuthState = iota
	// AuthAuthenticated means a backend attached an identity.
	AuthAuthenticated
	// AuthExhausted means every backend was tried or skipped without an identity.
	// It is not an error: guards downstream decide whether anonymous access is allowed.
	AuthExhausted
)

func (s AuthState) String() string {
	switch s {
	case AuthAuthenticated:
		return "authenticated"
	case AuthExhausted:
		return "exhausted"
	default:
		return "pending"
	}
}

// AuthChain tries backends in order until one authenticates the request.
type AuthChain struct {
	backends []AuthBackend
}

// NewAuthChain creates a chain trying backends in order.
func NewAuthChain(backends ...AuthBackend) *AuthChain {
	c := &AuthChain{}
	return c.Add(backends...)
}

// Add appends backends.
func (c *AuthChain) Add(backends ...AuthBackend) *AuthChain {
	for _, b := range backends {
		if b != nil {
			c.backends = append(slices.Clip(c.backends), b)
		}
	}
	return c
}

// AddBefore places b before the backend named anchor.
func (c *AuthChain) AddBefore(anchor string, b AuthBackend) *AuthChain {
	c.backends = insertNamed(c.backends, anchor, b, false)
	return c
}

// AddAfter places b after the backend named anchor.
func (c *AuthChain) AddAfter(anchor string, b AuthBackend) *AuthChain {
	c.backends = insertNamed(c.backends, anchor, b, true)
	return c
}

// Names lists the backends in the order they are tried.
func (c *AuthChain) Names() []string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = NameOf(b)
	}
	return names
}

// Handle runs the chain for r.
// Backends limited to other services are skipped without running their hooks.
// The chain stops at the first backend returning a context with a user, which is stored on r.
func (c *AuthChain) Handle(r *Request) (AuthState, error) {
	if r.IsAuthenticated() {
		return AuthAuthenticated, nil
	}
	if c == nil {
		return AuthExhausted, nil
	}

	backends := c.backends
	service := r.Service()

	for i := 0; i < len(backends); i++ {
		b := backends[i]
		if !appliesTo(b, service) {
			continue
		}

		auth, err := runBackend(b, r)
		if err != nil {
			return AuthPending, err
		}
		if auth != nil && auth.User != nil {
			auth.Authenticated = true
			r.SetAuth(auth)
			return AuthAuthenticated, nil
		}
	}
	return AuthExhausted, nil
}

func runBackend(b AuthBackend, r *Request) (*AuthContext, error) {
	hooks, ok := b.(AuthHooks)
	if ok {
		hooks.BeforeRun(r)
		defer hooks.AfterRun(r)
	}
	return b.Authenticate(r)
}
