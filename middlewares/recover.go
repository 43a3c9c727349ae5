package middlewares

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/pionia/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	Logger            *slog.Logger
	Message           string
	StackSize         int  // Max stack trace size (default: 4096)
	Code              int  // Envelope code (default: 500)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// WithRecoverLogger sets the logger used to report panics.
func WithRecoverLogger(l *slog.Logger) RecoverOption {
	return func(cfg *RecoverConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithRecoverCode sets the envelope code sent after a panic.
func WithRecoverCode(code int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.Code = code
	}
}

// Recover returns HTTP middleware that turns panics into a server-error envelope.
// The kernel already guards dispatched requests; Recover covers handlers mounted
// with WithHandler and any HTTP middleware added after it.
func Recover(opts ...RecoverOption) func(http.Handler) http.Handler {
	cfg := &RecoverConfig{
		Logger:    slog.New(slog.DiscardHandler),
		Message:   "Internal server error",
		StackSize: DefaultStackSize,
		Code:      http.StatusInternalServerError,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				pe := &PanicError{Value: p}
				if !cfg.DisablePrintStack {
					pe.Stack = make([]byte, cfg.StackSize)
					pe.Stack = pe.Stack[:runtime.Stack(pe.Stack, false)]
					cfg.Logger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", p),
						slog.String("stack", string(pe.Stack)),
					)
				} else {
					cfg.Logger.ErrorContext(r.Context(), "panic recovered", slog.Any("panic", p))
				}

				if ww.Status() != 0 {
					return
				}
				if err := internal.Fail(cfg.Code, cfg.Message).Write(ww); err != nil {
					cfg.Logger.ErrorContext(r.Context(), "failed to write response",
						slog.String("error", err.Error()),
					)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
