package backends

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/cache"
	"github.com/dmitrymomot/pionia/pkg/keyed"
)

// DefaultTokenTTL is how long a resolved identity stays cached.
const DefaultTokenTTL = 5 * time.Minute

// Identity is what a token resolves to. It is JSON-encoded when cached in Redis.
type Identity struct {
	Extra       map[string]any `json:"extra,omitempty"`
	User        string         `json:"user"`
	Permissions []string       `json:"permissions,omitempty"`
}

// TokenLookup resolves a raw token. It returns ErrTokenNotFound for unknown tokens.
type TokenLookup func(ctx context.Context, token string) (Identity, error)

// TokenOption configures the Token backend.
type TokenOption func(*Token)

// WithTokenCache caches identities in c for ttl.
func WithTokenCache(c cache.Cache[Identity], ttl time.Duration) TokenOption {
	return func(t *Token) {
		t.cache = c
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithTokenExtractor sets where the token is read from.
// Defaults to the Bearer header, then X-API-Key.
func WithTokenExtractor(sources ...internal.ExtractorSource) TokenOption {
	return func(t *Token) {
		t.extractor = internal.NewExtractor(sources...)
	}
}

// WithTokenServices restricts the backend to the given services.
func WithTokenServices(services ...string) TokenOption {
	return func(t *Token) {
		t.services = services
	}
}

// Token authenticates opaque API tokens.
type Token struct {
	cache     cache.Cache[Identity]
	lookup    TokenLookup
	extractor internal.Extractor
	services  []string
	ttl       time.Duration
}

// NewToken creates a token backend resolving credentials with lookup.
func NewToken(lookup TokenLookup, opts ...TokenOption) *Token {
	t := &Token{
		lookup: lookup,
		ttl:    DefaultTokenTTL,
		extractor: internal.NewExtractor(
			internal.FromBearerToken(),
			internal.FromHeader("X-API-Key"),
		),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Token) Name() string { return "token" }

func (t *Token) LimitServices() []string { return t.services }

// Authenticate resolves the request token. No token passes to the next backend.
func (t *Token) Authenticate(r *internal.Request) (*internal.AuthContext, error) {
	raw, ok := t.extractor.Extract(r)
	if !ok {
		return nil, nil
	}

	id, err := t.resolve(r.Context(), raw)
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return nil, internal.ErrUnauthenticated("Invalid token", internal.WithCause(err))
	case err != nil:
		return nil, internal.ErrServer("Failed to verify token", internal.WithCause(err))
	case id.User == "":
		return nil, internal.ErrUnauthenticated("Invalid token", internal.WithCause(ErrNoSubject))
	}

	auth := internal.NewAuthContext(id.User, id.Permissions...)
	auth.Extra = keyed.FromMap(id.Extra)
	return auth, nil
}

// Revoke drops the cached identity of token.
func (t *Token) Revoke(ctx context.Context, token string) error {
	if t.cache == nil {
		return nil
	}
	return t.cache.Delete(ctx, cacheKey(token))
}

func (t *Token) resolve(ctx context.Context, raw string) (Identity, error) {
	if t.cache == nil {
		return t.lookup(ctx, raw)
	}
	return cache.GetOrSet(ctx, t.cache, cacheKey(raw), func(ctx context.Context) (Identity, time.Duration, error) {
		id, err := t.lookup(ctx, raw)
		return id, t.ttl, err
	})
}

// cacheKey keeps raw tokens out of the cache keyspace.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token:" + hex.EncodeToString(sum[:])
}
