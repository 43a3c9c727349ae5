package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type runtimeConfig struct {
	handler         http.Handler
	baseCtx         context.Context
	logger          *slog.Logger
	address         string
	endpoints       []string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// runServer serves until SIGINT/SIGTERM or the base context ends, then drains
// in-flight requests and runs the shutdown hooks.
func runServer(cfg runtimeConfig) error {
	if cfg.address == "" {
		cfg.address = ":8080"
	}
	if cfg.shutdownTimeout <= 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.baseCtx == nil {
		cfg.baseCtx = context.Background()
	}

	ctx, stop := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runStartupHooks(ctx, cfg); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.address)
	if err != nil {
		return err
	}

	server := newServer(cfg.handler)
	served := make(chan error, 1)
	go func() {
		defer close(served)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			served <- err
		}
	}()

	cfg.logger.Info("server started",
		slog.String("address", ln.Addr().String()),
		slog.Any("endpoints", cfg.endpoints),
	)

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	return shutdown(server, cfg)
}

func newServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}
}

func runStartupHooks(ctx context.Context, cfg runtimeConfig) error {
	for i, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			cfg.logger.Error("startup hook failed", slog.Int("hook", i), slog.String("error", err.Error()))
			return err
		}
	}
	return nil
}

// shutdown drains the server first; hooks release what requests were using.
func shutdown(server *http.Server, cfg runtimeConfig) error {
	cfg.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for i, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			cfg.logger.Error("shutdown hook failed", slog.Int("hook", i), slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	cfg.logger.Info("shutdown completed")
	return nil
}
