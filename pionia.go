package pionia

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/logger"
)

// Type aliases - public API
type (
	// App is the kernel: it mounts switches and runs the request pipeline.
	App = internal.App

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// CheckFunc is a readiness probe.
	CheckFunc = internal.CheckFunc

	// Request is the per-request context handed to middlewares, backends and actions.
	Request = internal.Request

	// Response is the envelope every dispatched request answers with.
	Response = internal.Response

	// ResponseWriter forces HTTP 200 on everything written through it.
	ResponseWriter = internal.ResponseWriter

	// Switch routes requests of one API version to registered services.
	Switch = internal.Switch

	// ServiceFactory builds a service on first use.
	ServiceFactory = internal.ServiceFactory

	// Service is a named set of actions with access rules.
	Service = internal.Service

	// ServiceOption configures a Service.
	ServiceOption = internal.ServiceOption

	// ActionFunc is the signature of a service action.
	ActionFunc = internal.ActionFunc

	// Dispatcher resolves and runs the action a request targets.
	Dispatcher = internal.Dispatcher

	// Middleware runs before the dispatcher and after it.
	Middleware = internal.Middleware

	// BaseMiddleware gives no-op phases to middlewares that need only one.
	BaseMiddleware = internal.BaseMiddleware

	// MiddlewareFuncs adapts closures to Middleware.
	MiddlewareFuncs = internal.MiddlewareFuncs

	// MiddlewareChain is an ordered list of middlewares.
	MiddlewareChain = internal.MiddlewareChain

	// ServiceLimiter restricts a middleware or backend to some services.
	ServiceLimiter = internal.ServiceLimiter

	// Namer names a middleware or backend for AddBefore/AddAfter.
	Namer = internal.Namer

	// AuthContext is the identity attached to a request.
	AuthContext = internal.AuthContext

	// AuthBackend authenticates a request.
	AuthBackend = internal.AuthBackend

	// AuthBackendFunc adapts a function to AuthBackend.
	AuthBackendFunc = internal.AuthBackendFunc

	// AuthHooks runs code around a backend.
	AuthHooks = internal.AuthHooks

	// AuthChain tries backends in order until one authenticates the request.
	AuthChain = internal.AuthChain

	// AuthState is the outcome of the auth chain.
	AuthState = internal.AuthState

	// Error is a business error rendered as an envelope.
	Error = internal.Error

	// ErrorKind classifies pipeline errors.
	ErrorKind = internal.ErrorKind

	// ErrorOption configures an Error.
	ErrorOption = internal.ErrorOption

	// ErrorCodes maps error kinds to envelope codes.
	ErrorCodes = internal.ErrorCodes

	// Extractor reads a value from the first matching source.
	Extractor = internal.Extractor

	// ExtractorSource reads one candidate value from a request.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Error kinds.
const (
	KindServer          = internal.KindServer
	KindClient          = internal.KindClient
	KindNotFound        = internal.KindNotFound
	KindUnauthenticated = internal.KindUnauthenticated
	KindUnauthorized    = internal.KindUnauthorized
)

// Auth chain outcomes.
const (
	AuthPending       = internal.AuthPending
	AuthAuthenticated = internal.AuthAuthenticated
	AuthExhausted     = internal.AuthExhausted
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	v1 := pionia.NewSwitch("v1").
//	    Register("articles", articles.Service())
//
//	app := pionia.New(
//	    pionia.WithSwitch(v1),
//	    pionia.WithMiddleware(middlewares.RequestID()),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewSwitch creates a switch mounted at /api/<version>/.
func NewSwitch(version string) *Switch {
	return internal.NewSwitch(version)
}

// NewService creates a service from options.
//
// Example:
//
//	svc := pionia.NewService(
//	    pionia.WithAction("me", me),
//	    pionia.RequireAuth(),
//	)
func NewService(opts ...ServiceOption) *Service {
	return internal.NewService(opts...)
}

// NewMiddlewareChain creates a chain holding mws in order.
func NewMiddlewareChain(mws ...Middleware) *MiddlewareChain {
	return internal.NewMiddlewareChain(mws...)
}

// NewAuthChain creates a chain trying backends in order.
func NewAuthChain(backends ...AuthBackend) *AuthChain {
	return internal.NewAuthChain(backends...)
}

// NewAuthContext creates an authenticated identity.
func NewAuthContext(user any, permissions ...string) *AuthContext {
	return internal.NewAuthContext(user, permissions...)
}

// NewDispatcher creates a dispatcher for sw, e.g. to run actions outside the HTTP server.
// A nil logger discards output.
func NewDispatcher(sw *Switch, codes ErrorCodes, l *slog.Logger) *Dispatcher {
	return internal.NewDispatcher(sw, codes, l)
}

// Service options

// WithAction registers an action. Names are case-insensitive.
func WithAction(name string, fn ActionFunc) ServiceOption {
	return internal.WithAction(name, fn)
}

// RequireAuth requires an authenticated identity for every action.
func RequireAuth() ServiceOption {
	return internal.RequireAuth()
}

// DeactivateActions makes actions answer with a client error.
func DeactivateActions(names ...string) ServiceOption {
	return internal.DeactivateActions(names...)
}

// ActionsRequiringAuth requires an identity for the named actions only.
func ActionsRequiringAuth(names ...string) ServiceOption {
	return internal.ActionsRequiringAuth(names...)
}

// ActionPermissions requires every listed permission for action.
func ActionPermissions(action string, perms ...string) ServiceOption {
	return internal.ActionPermissions(action, perms...)
}

// Responses

// Success creates a success envelope (code 0) carrying data.
func Success(data any) *Response {
	return internal.Success(data)
}

// Fail creates a failure envelope with code and message.
func Fail(code int, message string) *Response {
	return internal.Fail(code, message)
}

// NewResponse creates an envelope from all of its fields.
func NewResponse(code int, message string, data, extra any) *Response {
	return internal.NewResponse(code, message, data, extra)
}

// NewResponseWriter wraps w so it always answers 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return internal.NewResponseWriter(w)
}

// Errors

// NewError creates an error with an explicit envelope code.
func NewError(code int, message string, opts ...ErrorOption) *Error {
	return internal.NewError(code, message, opts...)
}

// ErrClient creates a client error: missing or invalid input.
func ErrClient(message string, opts ...ErrorOption) *Error {
	return internal.ErrClient(message, opts...)
}

// ErrNotFound creates a not-found error.
func ErrNotFound(message string, opts ...ErrorOption) *Error {
	return internal.ErrNotFound(message, opts...)
}

// ErrUnauthenticated creates an error for requests lacking an identity.
func ErrUnauthenticated(message string, opts ...ErrorOption) *Error {
	return internal.ErrUnauthenticated(message, opts...)
}

// ErrUnauthorized creates an error for identities lacking a permission.
func ErrUnauthorized(message string, opts ...ErrorOption) *Error {
	return internal.ErrUnauthorized(message, opts...)
}

// ErrServer creates a server error. Its message is sent to the client as is.
func ErrServer(message string, opts ...ErrorOption) *Error {
	return internal.ErrServer(message, opts...)
}

// ErrFieldRequired creates the "Field <name> is required" client error.
func ErrFieldRequired(field string) *Error {
	return internal.ErrFieldRequired(field)
}

// WithCause attaches the underlying error. It is logged, never sent.
func WithCause(err error) ErrorOption {
	return internal.WithCause(err)
}

// WithCode overrides the envelope code.
func WithCode(code int) ErrorOption {
	return internal.WithCode(code)
}

// AsError extracts the pipeline Error from err, or returns nil.
func AsError(err error) *Error {
	return internal.AsError(err)
}

// IsError reports whether err is a pipeline Error of kind.
func IsError(err error, kind ErrorKind) bool {
	return internal.IsError(err, kind)
}

// DefaultErrorCodes returns the default envelope codes.
func DefaultErrorCodes() ErrorCodes {
	return internal.DefaultErrorCodes()
}

// Request helpers

// ContextValue returns the request-scoped value stored under key, or the zero value.
func ContextValue[T any](r *Request, key any) T {
	return internal.ContextValue[T](r, key)
}

// PayloadValue returns the payload field key converted to T.
func PayloadValue[T ~string | ~int | ~int64 | ~float64 | ~bool](r *Request, key string) T {
	return internal.PayloadValue[T](r, key)
}

// PayloadDefault returns the payload field key converted to T, or defaultValue.
func PayloadDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](r *Request, key string, defaultValue T) T {
	return internal.PayloadDefault(r, key, defaultValue)
}

// Extractors

// NewExtractor creates an Extractor trying sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromQuery reads a URL query parameter.
func FromQuery(name string) ExtractorSource {
	return internal.FromQuery(name)
}

// FromPayload reads a payload field.
func FromPayload(key string) ExtractorSource {
	return internal.FromPayload(key)
}

// FromCookie reads a cookie.
func FromCookie(name string) ExtractorSource {
	return internal.FromCookie(name)
}

// FromBearerToken reads a Bearer token from the Authorization header.
func FromBearerToken() ExtractorSource {
	return internal.FromBearerToken()
}

// TargetExtractor adds the dispatched service and action to every log entry.
//
// Example:
//
//	pionia.WithLogger("api", pionia.TargetExtractor(), middlewares.RequestIDExtractor())
func TargetExtractor() ContextExtractor {
	return internal.TargetExtractor()
}
