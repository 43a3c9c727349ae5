package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/pionia/internal"
)

// DefaultMetricsNamespace prefixes every collector name.
const DefaultMetricsNamespace = "pionia"

// MetricsConfig configures the metrics middleware.
type MetricsConfig struct {
	Registry  *prometheus.Registry
	Namespace string
	Buckets   []float64
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the collector namespace.
func WithMetricsNamespace(ns string) MetricsOption {
	return func(cfg *MetricsConfig) {
		if ns != "" {
			cfg.Namespace = ns
		}
	}
}

// WithMetricsRegistry registers collectors on reg instead of a private registry.
func WithMetricsRegistry(reg *prometheus.Registry) MetricsOption {
	return func(cfg *MetricsConfig) {
		if reg != nil {
			cfg.Registry = reg
		}
	}
}

// WithMetricsBuckets sets the duration histogram buckets, in seconds.
func WithMetricsBuckets(b ...float64) MetricsOption {
	return func(cfg *MetricsConfig) {
		if len(b) > 0 {
			cfg.Buckets = b
		}
	}
}

type metricsStartKey struct{}

// Metrics counts dispatched requests and measures their duration per service,
// action and envelope code.
type Metrics struct {
	internal.BaseMiddleware
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the metrics middleware and registers its collectors.
//
// Example:
//
//	m := middlewares.NewMetrics()
//	app := pionia.New(
//	    pionia.WithMiddleware(m),
//	    pionia.WithHandler("/metrics", m.Handler()),
//	)
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: DefaultMetricsNamespace,
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
		cfg.Registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	}

	m := &Metrics{
		registry: cfg.Registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Total number of dispatched requests by envelope code.",
		}, []string{"service", "action", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "pipeline",
			Name:      "request_duration_seconds",
			Help:      "Duration of dispatched requests.",
			Buckets:   cfg.Buckets,
		}, []string{"service", "action"}),
	}
	cfg.Registry.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) Name() string { return "metrics" }

func (m *Metrics) OnRequest(r *internal.Request) error {
	r.Set(metricsStartKey{}, time.Now())
	return nil
}

// OnResponse records the request.
// Requests rejected by a middleware or auth backend never reach this phase.
func (m *Metrics) OnResponse(r *internal.Request, resp *internal.Response) error {
	start, ok := r.Get(metricsStartKey{}).(time.Time)
	if !ok {
		return nil
	}

	service, action := label(r.Service()), label(r.Action())
	m.requests.WithLabelValues(service, action, strconv.Itoa(resp.Code)).Inc()
	m.duration.WithLabelValues(service, action).Observe(time.Since(start).Seconds())
	return nil
}

// Registry exposes the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
