// Package logger builds slog loggers with context extraction and optional Sentry fan-out.
//
// A ContextExtractor pulls a request-scoped value out of a context and adds it to every
// record logged with that context:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(requestIDKey{}).(string)
//		return slog.String("request_id", id), ok && id != ""
//	}
//
//	log := logger.New(logger.Config{Level: "debug"}, requestID)
//	log.InfoContext(ctx, "request served", slog.Int("code", 0))
//
// When Config.Sentry.DSN is set, records are written both locally and to Sentry:
// errors become issues, warnings are stored as logs. An empty DSN or a failed
// Sentry initialization falls back to local logging only.
//
// NewLogHandlerDecorator wraps any slog.Handler with the same extraction behavior.
// NewNope returns a logger that discards everything and is the kernel default.
package logger
