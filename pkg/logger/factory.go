package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config holds logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`

	// Format is json or text.
	Format string `env:"LOG_FORMAT" envDefault:"json" yaml:"format"`

	Sentry SentryConfig `yaml:"sentry"`

	// Output defaults to os.Stdout.
	Output io.Writer `env:"-" yaml:"-"`
}

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" yaml:"dsn"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production" yaml:"environment"`

	// MinLevel is the lowest level stored as a Sentry log. Errors always create issues.
	MinLevel string `env:"SENTRY_MIN_LEVEL" envDefault:"warn" yaml:"min_level"`
}

// New creates a logger from cfg with optional context extractors.
// If cfg.Sentry.DSN is empty or Sentry fails to initialize, only the local handler is used.
// Context extractors are applied to records sent to every destination.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var local slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		local = slog.NewTextHandler(out, opts)
	} else {
		local = slog.NewJSONHandler(out, opts)
	}

	if cfg.Sentry.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if ParseLevel(cfg.Sentry.MinLevel) >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(newMultiHandler(local, sentryHandler), extractors...))
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
