package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/pionia/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithSwitch mounts switches at /api/<version>/.
// Two switches with the same version panic at startup.
func WithSwitch(sw ...*Switch) Option {
	return func(a *App) {
		for _, s := range sw {
			if s != nil {
				a.switches = append(a.switches, s)
			}
		}
	}
}

// WithMiddleware appends pipeline middlewares, run in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares.Add(mw...)
	}
}

// WithMiddlewareChain replaces the middleware chain.
// Use it when middlewares must be positioned with AddBefore/AddAfter.
func WithMiddlewareChain(c *MiddlewareChain) Option {
	return func(a *App) {
		if c != nil {
			a.middlewares = c
		}
	}
}

// WithAuthBackend appends authentication backends, tried in the order provided.
func WithAuthBackend(b ...AuthBackend) Option {
	return func(a *App) {
		a.auth.Add(b...)
	}
}

// WithAuthChain replaces the authentication chain.
func WithAuthChain(c *AuthChain) Option {
	return func(a *App) {
		if c != nil {
			a.auth = c
		}
	}
}

// WithErrorCodes sets the envelope codes used for each error kind.
// Zero fields keep their defaults.
func WithErrorCodes(codes ErrorCodes) Option {
	return func(a *App) {
		a.codes = codes
	}
}

// WithBasePath changes the "/api" prefix switches are mounted under.
func WithBasePath(p string) Option {
	return func(a *App) {
		if p != "" {
			a.basePath = p
		}
	}
}

// WithRequestTimeout bounds each dispatched request.
// The deadline is visible to actions and storage through the request context.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.requestTimeout = d
		}
	}
}

// WithMaxBodySize limits JSON and form bodies. Defaults to 10MB.
func WithMaxBodySize(n int64) Option {
	return func(a *App) {
		if n > 0 {
			a.limits.maxBodySize = n
		}
	}
}

// WithMaxMemory sets how much of a multipart body is held in memory before spilling to disk.
// Defaults to 32MB.
func WithMaxMemory(n int64) Option {
	return func(a *App) {
		if n > 0 {
			a.limits.maxMemory = n
		}
	}
}

// WithHTTPMiddleware adds transport-level middleware around every route,
// including health and metrics endpoints.
//
// Example:
//
//	pionia.WithHTTPMiddleware(middlewares.Preflight(corsCfg))
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithHandler attaches a plain http.Handler at pattern.
//
// Example:
//
//	pionia.WithHandler("/metrics", metrics.Handler())
func WithHandler(pattern string, h http.Handler) Option {
	return func(a *App) {
		if pattern != "" && h != nil {
			a.mounts = append(a.mounts, mount{handler: h, pattern: pattern})
		}
	}
}

// WithHealthChecks enables /health/live and /health/ready.
//
// Example:
//
//	pionia.WithHealthChecks(
//	    pionia.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    pionia.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			timeout:       defaultHealthTimeout,
			checks:        make(healthChecks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a JSON logger tagged with component.
// Extractors pull request-scoped values (request ID, service, action) into every entry.
//
// Example:
//
//	pionia.New(
//	    pionia.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(logger.Config{}, extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
