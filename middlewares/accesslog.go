package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/pionia/internal"
)

type accessLogStartKey struct{}

// AccessLogConfig configures the access log middleware.
type AccessLogConfig struct {
	Logger *slog.Logger // Defaults to the request logger
	Level  slog.Level
}

// AccessLogOption configures AccessLogConfig.
type AccessLogOption func(*AccessLogConfig)

// WithAccessLogger logs to l instead of the request logger.
func WithAccessLogger(l *slog.Logger) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Logger = l
	}
}

// WithAccessLogLevel sets the level of successful requests.
// Failed envelopes are always logged at warn.
func WithAccessLogLevel(level slog.Level) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Level = level
	}
}

type accessLog struct {
	cfg AccessLogConfig
}

// AccessLog returns a middleware that writes one entry per dispatched request
// with the service, action, envelope code and duration.
func AccessLog(opts ...AccessLogOption) internal.Middleware {
	cfg := AccessLogConfig{Level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &accessLog{cfg: cfg}
}

func (m *accessLog) Name() string { return "access_log" }

func (m *accessLog) OnRequest(r *internal.Request) error {
	r.Set(accessLogStartKey{}, time.Now())
	return nil
}

func (m *accessLog) OnResponse(r *internal.Request, resp *internal.Response) error {
	l := m.cfg.Logger
	if l == nil {
		l = r.Logger()
	}

	level := m.cfg.Level
	if !resp.IsSuccess() {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("service", r.Service()),
		slog.String("action", r.Action()),
		slog.Int("code", resp.Code),
	}
	if start, ok := r.Get(accessLogStartKey{}).(time.Time); ok {
		attrs = append(attrs, slog.Duration("duration", time.Since(start)))
	}
	if resp.Message != "" && !resp.IsSuccess() {
		attrs = append(attrs, slog.String("message", resp.Message))
	}
	l.LogAttrs(r.Context(), level, "request", attrs...)
	return nil
}
