package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// DefaultCORSConfig provides sensible defaults for CORS.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
	MaxAge:       DefaultCORSMaxAge,
}

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOriginFunc overrides AllowOrigins when set.
	AllowOriginFunc func(origin string) bool

	// AllowOrigins is a static list of allowed origins; "*" allows any.
	AllowOrigins []string

	// AllowMethods specifies the allowed HTTP methods.
	AllowMethods []string

	// AllowHeaders specifies the allowed request headers.
	AllowHeaders []string

	// ExposeHeaders specifies headers exposed to the client.
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials (cookies, authorization headers) are allowed.
	// When true the actual origin is echoed instead of "*".
	AllowCredentials bool

	// MaxAge specifies how long preflight responses can be cached.
	MaxAge time.Duration
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithAllowOrigins sets the allowed origins.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOrigins = origins
	}
}

// WithAllowOriginFunc sets a dynamic origin validator.
// When set, it completely overrides AllowOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOriginFunc = fn
	}
}

// WithAllowMethods sets the allowed HTTP methods.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowMethods = methods
	}
}

// WithAllowHeaders sets the allowed request headers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowHeaders = headers
	}
}

// WithExposeHeaders sets the headers exposed to the client.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposeHeaders = headers
	}
}

// WithAllowCredentials enables credentials support.
// When enabled, Access-Control-Allow-Origin echoes the actual origin instead of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowCredentials = true
	}
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(duration time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = duration
	}
}

// CORS returns HTTP middleware handling Cross-Origin Resource Sharing.
// Preflight (OPTIONS) requests are answered with 204 before reaching the router,
// since switches only accept POST and GET.
//
// Example:
//
//	pionia.WithHTTPMiddleware(middlewares.CORS(
//	    middlewares.WithAllowOrigins("https://app.example.com"),
//	))
func CORS(opts ...CORSOption) func(http.Handler) http.Handler {
	cfg := &CORSConfig{
		AllowOrigins: DefaultCORSConfig.AllowOrigins,
		AllowMethods: DefaultCORSConfig.AllowMethods,
		AllowHeaders: DefaultCORSConfig.AllowHeaders,
		MaxAge:       DefaultCORSConfig.MaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	allowMethodsStr := strings.Join(cfg.AllowMethods, ", ")
	allowHeadersStr := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeadersStr := strings.Join(cfg.ExposeHeaders, ", ")
	maxAgeStr := strconv.Itoa(int(cfg.MaxAge.Seconds()))
	hasWildcard := slices.Contains(cfg.AllowOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !isOriginAllowed(origin, cfg, hasWildcard) {
				// Without CORS headers the browser blocks the response.
				next.ServeHTTP(w, r)
				return
			}

			headers := w.Header()
			headers.Add("Vary", "Origin")

			// Credentials forbid "*", so the origin is echoed.
			if cfg.AllowCredentials || !hasWildcard {
				headers.Set("Access-Control-Allow-Origin", origin)
			} else {
				headers.Set("Access-Control-Allow-Origin", "*")
			}
			if cfg.AllowCredentials {
				headers.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposeHeadersStr != "" {
				headers.Set("Access-Control-Expose-Headers", exposeHeadersStr)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				headers.Add("Vary", "Access-Control-Request-Method")
				headers.Add("Vary", "Access-Control-Request-Headers")
				headers.Set("Access-Control-Allow-Methods", allowMethodsStr)
				headers.Set("Access-Control-Allow-Headers", allowHeadersStr)
				if cfg.MaxAge > 0 {
					headers.Set("Access-Control-Max-Age", maxAgeStr)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isOriginAllowed(origin string, cfg *CORSConfig, hasWildcard bool) bool {
	if cfg.AllowOriginFunc != nil {
		return cfg.AllowOriginFunc(origin)
	}
	if hasWildcard {
		return true
	}
	return slices.Contains(cfg.AllowOrigins, origin)
}
