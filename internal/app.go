package internal

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/pionia/pkg/keyed"
	"github.com/dmitrymomot/pionia/pkg/logger"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

const defaultBasePath = "/api"

// App is the kernel: it mounts every Switch and runs the request pipeline
// middlewares (request) -> auth chain -> dispatcher -> middlewares (response) -> send.
// App is immutable after creation; all configuration is done via New().
type App struct {
	router          chi.Router
	logger          *slog.Logger
	middlewares     *MiddlewareChain
	auth            *AuthChain
	healthConfig    *healthConfig
	basePath        string
	switches        []*Switch
	mounts          []mount
	httpMiddlewares []func(http.Handler) http.Handler
	limits          requestLimits
	codes           ErrorCodes
	requestTimeout  time.Duration
}

// mount is a plain http.Handler attached next to the API, e.g. /metrics.
type mount struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
// Example:
//
//	v1 := pionia.NewSwitch("v1").
//	    Register("articles", articles.Service(pionia.All...))
//
//	app := pionia.New(
//	    pionia.WithSwitch(v1),
//	    pionia.WithMiddleware(middlewares.RequestID()),
//	    pionia.WithAuthBackend(backends.NewJWT(secret)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:      chi.NewRouter(),
		logger:      logger.NewNope(),
		middlewares: NewMiddlewareChain(),
		auth:        NewAuthChain(),
		basePath:    defaultBasePath,
		codes:       DefaultErrorCodes(),
		limits: requestLimits{
			maxMemory:   defaultMaxMemory,
			maxBodySize: defaultMaxBodySize,
		},
	}

	for _, opt := range opts {
		opt(a)
	}
	a.codes = a.codes.withDefaults()

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server on addr and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080",
//	    pionia.ShutdownHook(db.Shutdown(pool)),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.address != "" {
		addr = cfg.address
	}
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		endpoints:       a.endpoints(),
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// endpoints lists the dispatch path of every mounted switch.
func (a *App) endpoints() []string {
	out := make([]string, 0, len(a.switches))
	for _, sw := range a.switches {
		out = append(out, path.Join(a.basePath, sw.Version())+"/")
	}
	return out
}

func (a *App) setupRoutes() {
	for _, mw := range a.httpMiddlewares {
		a.router.Use(mw)
	}

	a.router.NotFound(a.envelopeHandler(ErrNotFound("Route not found")))
	a.router.MethodNotAllowed(a.envelopeHandler(ErrClient("Method not allowed")))

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, livenessHandler())
		a.router.Get(a.healthConfig.readinessPath, readinessHandler(a.healthConfig, a.logger))
	}

	for _, m := range a.mounts {
		a.router.Handle(m.pattern, m.handler)
	}

	for _, sw := range a.switches {
		d := NewDispatcher(sw, a.codes, a.logger)
		a.router.Route(path.Join(a.basePath, sw.Version()), func(r chi.Router) {
			r.Post("/", a.dispatchHandler(d))
			r.Get("/", a.pingHandler(sw))
		})
	}
}

// dispatchHandler runs the full pipeline for one switch.
// Panics are recovered into a server-error envelope; the status is always 200.
func (a *App) dispatchHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := NewResponseWriter(w)

		if a.requestTimeout > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), a.requestTimeout)
			defer cancel()
			r = r.WithContext(ctx)
		}

		defer func() {
			if p := recover(); p != nil {
				a.logger.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", p),
					slog.String("stack", string(debug.Stack())),
				)
				if !rw.Written() {
					a.send(r.Context(), rw, a.codes.Envelope(ErrServer(internalErrorMessage)))
				}
			}
		}()

		req, err := newRequest(rw, r, a.logger, a.limits)
		if err != nil {
			a.send(r.Context(), rw, a.fail(r.Context(), "invalid request", err))
			return
		}
		defer req.Finish()

		resp := a.handle(req, d)
		ctx := req.Context()
		a.send(ctx, rw, resp)

		a.logger.DebugContext(ctx, "request served",
			slog.Int("code", resp.Code),
			slog.Duration("duration", time.Since(start)),
			slog.Int64("size", rw.Size()),
		)
	}
}

// handle runs the pipeline stages and returns the envelope to send.
func (a *App) handle(req *Request, d *Dispatcher) *Response {
	req.Set(targetKey{}, target{service: req.Service(), action: req.Action()})

	if err := a.middlewares.Handle(req, nil); err != nil {
		return a.fail(req.Context(), "middleware failed", err)
	}

	if _, err := a.auth.Handle(req); err != nil {
		return a.fail(req.Context(), "authentication failed", err)
	}

	resp := d.Process(req)

	if err := a.middlewares.Handle(req, resp); err != nil {
		return a.fail(req.Context(), "middleware failed", err)
	}
	return resp
}

func (a *App) fail(ctx context.Context, msg string, err error) *Response {
	level := slog.LevelError
	if e := AsError(err); e != nil && e.Kind != KindServer {
		level = slog.LevelWarn
	}
	a.logger.Log(ctx, level, msg, slog.String("error", err.Error()))
	return a.codes.Envelope(err)
}

// send writes resp. An envelope that cannot be encoded is replaced by a server error.
func (a *App) send(ctx context.Context, w http.ResponseWriter, resp *Response) {
	err := resp.Write(w)
	if err == nil {
		return
	}
	a.logger.ErrorContext(ctx, "failed to write response", slog.String("error", err.Error()))
	if rw, ok := w.(*ResponseWriter); ok && rw.Written() {
		return
	}
	if err := a.codes.Envelope(ErrServer("Failed to encode response")).Write(w); err != nil {
		a.logger.ErrorContext(ctx, "failed to write fallback response", slog.String("error", err.Error()))
	}
}

// pingHandler answers GET /api/<version>/ with the switch description.
func (a *App) pingHandler(sw *Switch) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Success(keyed.Of(
			"framework", "pionia",
			"version", sw.Version(),
			"services", sw.Services(),
		)).WithMessage("pong")
		a.send(r.Context(), NewResponseWriter(w), resp)
	}
}

func (a *App) envelopeHandler(err *Error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.send(r.Context(), NewResponseWriter(w), a.codes.Envelope(err))
	}
}
