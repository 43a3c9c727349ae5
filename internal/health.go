package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultHealthTimeout = 5 * time.Second

	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// CheckFunc is a readiness probe, e.g. db.Healthcheck(pool) or redis.Healthcheck(client).
type CheckFunc func(ctx context.Context) error

type healthChecks map[string]CheckFunc

type healthReport struct {
	Checks map[string]checkResult `json:"checks,omitempty"`
	Status string                 `json:"status"`
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// healthConfig holds health endpoint configuration.
type healthConfig struct {
	checks        healthChecks
	livenessPath  string
	readinessPath string
	timeout       time.Duration
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. Checks run concurrently.
//
// Example:
//
//	pionia.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}

// WithHealthTimeout bounds the duration of a readiness probe.
func WithHealthTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Health endpoints answer with real HTTP statuses; orchestrators rely on them.
func livenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			writeHealthJSON(w, http.StatusOK, &healthReport{Status: statusHealthy})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func readinessHandler(cfg *healthConfig, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := runChecks(r.Context(), cfg.checks, cfg.timeout, logger)

		status := http.StatusOK
		if report.Status == statusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		if wantsJSON(r) {
			writeHealthJSON(w, status, report)
			return
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(http.StatusText(status)))
	}
}

// runChecks executes all checks concurrently and aggregates the result.
func runChecks(ctx context.Context, checks healthChecks, timeout time.Duration, logger *slog.Logger) *healthReport {
	if len(checks) == 0 {
		return &healthReport{Status: statusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]checkResult, len(checks))
		status  = statusHealthy
	)

	for name, check := range checks {
		g.Go(func() error {
			res := checkResult{Status: statusHealthy}
			if err := check(ctx); err != nil {
				res = checkResult{Status: statusUnhealthy, Error: err.Error()}
				logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = res
			if res.Status == statusUnhealthy {
				status = statusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return &healthReport{Status: status, Checks: results}
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeHealthJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
