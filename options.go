package pionia

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/pionia/internal"
)

// App options

// WithSwitch mounts switches at /api/<version>/.
func WithSwitch(sw ...*Switch) Option {
	return internal.WithSwitch(sw...)
}

// WithMiddleware appends pipeline middlewares, run in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithMiddlewareChain replaces the middleware chain.
func WithMiddlewareChain(c *MiddlewareChain) Option {
	return internal.WithMiddlewareChain(c)
}

// WithAuthBackend appends authentication backends, tried in the order provided.
//
// Example:
//
//	pionia.WithAuthBackend(
//	    backends.NewJWT(secret),
//	    backends.NewToken(lookup),
//	)
func WithAuthBackend(b ...AuthBackend) Option {
	return internal.WithAuthBackend(b...)
}

// WithAuthChain replaces the authentication chain.
func WithAuthChain(c *AuthChain) Option {
	return internal.WithAuthChain(c)
}

// WithErrorCodes sets the envelope codes used for each error kind.
// Zero fields keep their defaults.
func WithErrorCodes(codes ErrorCodes) Option {
	return internal.WithErrorCodes(codes)
}

// WithBasePath changes the "/api" prefix switches are mounted under.
func WithBasePath(p string) Option {
	return internal.WithBasePath(p)
}

// WithRequestTimeout bounds each dispatched request.
func WithRequestTimeout(d time.Duration) Option {
	return internal.WithRequestTimeout(d)
}

// WithMaxBodySize limits JSON and form bodies. Defaults to 10MB.
func WithMaxBodySize(n int64) Option {
	return internal.WithMaxBodySize(n)
}

// WithMaxMemory sets how much of a multipart body is held in memory. Defaults to 32MB.
func WithMaxMemory(n int64) Option {
	return internal.WithMaxMemory(n)
}

// WithHTTPMiddleware adds transport-level middleware around every route.
//
// Example:
//
//	pionia.WithHTTPMiddleware(middlewares.Recover(), middlewares.CORS())
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithHandler attaches a plain http.Handler at pattern.
//
// Example:
//
//	pionia.WithHandler("/metrics", metrics.Handler())
func WithHandler(pattern string, h http.Handler) Option {
	return internal.WithHandler(pattern, h)
}

// WithHealthChecks enables /health/live and /health/ready.
// Liveness always answers OK while the process runs; readiness runs every check.
//
// Example:
//
//	pionia.WithHealthChecks(
//	    pionia.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a JSON logger with a component name and optional extractors.
//
// Example:
//
//	pionia.WithLogger("api", pionia.TargetExtractor(), middlewares.RequestIDExtractor())
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Health options

// WithLivenessPath overrides "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath overrides "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check. Checks run concurrently.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithHealthTimeout bounds the duration of a readiness probe.
func WithHealthTimeout(d time.Duration) HealthOption {
	return internal.WithHealthTimeout(d)
}
