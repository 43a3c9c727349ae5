package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/pionia/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Message string
	Timeout time.Duration
	Code    int // Envelope code for timed out requests; 0 uses the server-error code
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutMessage sets the envelope message for timed out requests.
func WithTimeoutMessage(msg string) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		if msg != "" {
			cfg.Message = msg
		}
	}
}

// WithTimeoutCode sets the envelope code for timed out requests.
func WithTimeoutCode(code int) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		cfg.Code = code
	}
}

type timeoutState struct {
	ctx    context.Context
	cancel context.CancelFunc
}

type timeoutContextKey struct{}

type timeout struct {
	cfg TimeoutConfig
}

// Timeout returns a middleware that attaches a deadline to the request context
// before authentication. Actions and storage observe it through r.Context().
// A request that finishes past the deadline is answered with a server error
// caused by a TimeoutError. The deadline is released when the request finishes,
// even if a later stage rejects it.
func Timeout(d time.Duration, opts ...TimeoutOption) internal.Middleware {
	cfg := TimeoutConfig{
		Timeout: d,
		Message: "Request timeout",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &timeout{cfg: cfg}
}

func (m *timeout) Name() string { return "timeout" }

func (m *timeout) OnRequest(r *internal.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), m.cfg.Timeout)
	r.SetContext(ctx)
	r.Set(timeoutContextKey{}, &timeoutState{ctx: ctx, cancel: cancel})
	r.OnFinish(cancel)
	return nil
}

func (m *timeout) OnResponse(r *internal.Request, resp *internal.Response) error {
	st := internal.ContextValue[*timeoutState](r, timeoutContextKey{})
	if st == nil {
		return nil
	}
	defer st.cancel()

	if !errors.Is(st.ctx.Err(), context.DeadlineExceeded) {
		return nil
	}
	r.LogWarn("request timeout", "timeout", m.cfg.Timeout.String())

	cause := internal.WithCause(&TimeoutError{Duration: m.cfg.Timeout})
	if m.cfg.Code != 0 {
		return internal.NewError(m.cfg.Code, m.cfg.Message, cause)
	}
	return internal.ErrServer(m.cfg.Message, cause)
}

// GetTimeoutContext returns the deadline-bound context if the Timeout middleware ran,
// otherwise the request context.
func GetTimeoutContext(r *internal.Request) context.Context {
	if st := internal.ContextValue[*timeoutState](r, timeoutContextKey{}); st != nil {
		return st.ctx
	}
	return r.Context()
}
