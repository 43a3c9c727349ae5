// Package backends provides authentication backends for the Pionia auth chain.
//
// JWT verifies bearer tokens signed with HMAC (or any key set through WithJWTKeyFunc)
// and maps the subject and permissions claims to a pionia.AuthContext.
//
//	auth := backends.NewJWT([]byte(cfg.JWTSecret), backends.WithJWTIssuer("blog"))
//	app := pionia.New(pionia.WithAuthBackend(auth))
//
// Token resolves opaque API tokens through a lookup function, typically a database
// query, and caches identities with pkg/cache so repeated requests skip the lookup.
//
//	tokens := backends.NewToken(lookup,
//	    backends.WithTokenCache(cache.NewRedis[backends.Identity](client, nil), 5*time.Minute),
//	)
//
// A request without a credential passes to the next backend. A credential that fails
// verification aborts the request with an unauthenticated error.
package backends
