package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string // ID generator function
	ResponseHeader string        // Response header name
	Headers        []string      // Headers to check for existing ID (in order)
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

type requestID struct {
	internal.BaseMiddleware
	cfg RequestIDConfig
}

// RequestID returns a middleware that assigns an ID to each request.
// The ID is taken from the first matching request header or generated as a UUIDv4.
// It is stored in the request context and echoed in the response header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &requestID{cfg: cfg}
}

func (m *requestID) Name() string { return "request_id" }

func (m *requestID) OnRequest(r *internal.Request) error {
	// First match wins so upstream tracing IDs survive.
	var reqID string
	for _, header := range m.cfg.Headers {
		if v := r.Header(header); v != "" {
			reqID = v
			break
		}
	}
	if reqID == "" {
		reqID = m.cfg.Generator()
	}

	r.Set(requestIDKey{}, reqID)
	if m.cfg.ResponseHeader != "" {
		r.SetHeader(m.cfg.ResponseHeader, reqID)
	}
	return nil
}

// GetRequestID returns the request ID, or an empty string if none is set.
func GetRequestID(r *internal.Request) string {
	return internal.ContextValue[string](r, requestIDKey{})
}

// RequestIDExtractor returns a ContextExtractor for use with WithLogger.
// Automatically adds "request_id" to all log entries.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
