package pionia

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/pionia/internal"
)

// Run options

// Address overrides the listen address passed to App.Run.
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the runtime logger. Defaults to the App logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds graceful shutdown, including hooks. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs fn before the server accepts connections. A failing hook aborts startup.
//
// Example:
//
//	pionia.StartupHook(func(ctx context.Context) error {
//	    return db.Migrate(ctx, conn, migrations, "", log)
//	})
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function run after the server stops.
//
// Example:
//
//	pionia.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context for signal handling. Defaults to context.Background().
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
