package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/pionia/internal"
)

// Rate limit defaults.
const (
	DefaultRateLimit     = 10 // requests per second
	DefaultRateBurst     = 20
	DefaultRateLimitCode = http.StatusTooManyRequests
	DefaultLimiterTTL    = 10 * time.Minute
)

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	Key      internal.Extractor // Caller key sources; the client IP is the fallback
	Message  string
	Services []string
	Rate     rate.Limit
	Burst    int
	Code     int
	TTL      time.Duration // Idle limiters are dropped after TTL
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitKey sets where the caller key is read from, e.g. an API key header.
func WithRateLimitKey(sources ...internal.ExtractorSource) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.Key = internal.NewExtractor(sources...)
	}
}

// WithRateLimitBurst sets the bucket size.
func WithRateLimitBurst(n int) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if n > 0 {
			cfg.Burst = n
		}
	}
}

// WithRateLimitCode sets the envelope code for rejected requests.
func WithRateLimitCode(code int) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.Code = code
	}
}

// WithRateLimitServices restricts the limiter to the given services.
func WithRateLimitServices(services ...string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.Services = services
	}
}

// WithRateLimitTTL sets how long an idle caller keeps its limiter.
func WithRateLimitTTL(d time.Duration) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if d > 0 {
			cfg.TTL = d
		}
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token-bucket limiter per caller key.
type RateLimiter struct {
	internal.BaseMiddleware
	visitors map[string]*visitor
	now      func() time.Time
	cfg      RateLimitConfig
	sweptAt  time.Time
	mu       sync.Mutex
}

// RateLimit returns a middleware allowing perSecond requests per caller with a burst.
// It runs before authentication, so callers are keyed by the configured extractor
// sources or by client IP.
//
// Example:
//
//	middlewares.RateLimit(5,
//	    middlewares.WithRateLimitKey(pionia.FromHeader("X-API-Key")),
//	    middlewares.WithRateLimitServices("auth"),
//	)
func RateLimit(perSecond float64, opts ...RateLimitOption) *RateLimiter {
	cfg := RateLimitConfig{
		Rate:    rate.Limit(perSecond),
		Burst:   DefaultRateBurst,
		Code:    DefaultRateLimitCode,
		Message: "Too many requests",
		TTL:     DefaultLimiterTTL,
	}
	if perSecond <= 0 {
		cfg.Rate = DefaultRateLimit
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
		cfg:      cfg,
	}
}

func (rl *RateLimiter) Name() string { return "rate_limit" }

func (rl *RateLimiter) LimitServices() []string { return rl.cfg.Services }

func (rl *RateLimiter) OnRequest(r *internal.Request) error {
	key := rl.key(r)
	if rl.Allow(key) {
		return nil
	}

	r.LogWarn("rate limit exceeded", "key", key)
	r.SetHeader("Retry-After", strconv.Itoa(retryAfter(rl.cfg.Rate)))
	return internal.NewError(rl.cfg.Code, rl.cfg.Message,
		internal.WithCause(&RateLimitError{Key: key}),
	)
}

// Allow reports whether the caller identified by key may proceed, consuming one token.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.cfg.Rate, rl.cfg.Burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops limiters idle longer than the TTL, at most once per TTL.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.sweptAt) < rl.cfg.TTL {
		return
	}
	rl.sweptAt = now
	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.cfg.TTL {
			delete(rl.visitors, k)
		}
	}
}

func (rl *RateLimiter) key(r *internal.Request) string {
	if k, ok := rl.cfg.Key.Extract(r); ok {
		return k
	}
	return clientIP(r.HTTP())
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(l rate.Limit) int {
	if l <= 0 || l >= 1 {
		return 1
	}
	return int(1/float64(l) + 0.5)
}
