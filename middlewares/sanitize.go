package middlewares

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/keyed"
)

var (
	safePolicy     *bluemonday.Policy
	safePolicyOnce sync.Once
)

// SafeHTMLPolicy allows basic formatting (p, a, strong, em, lists, code) and strips
// scripts, event handlers and javascript: URLs.
func SafeHTMLPolicy() *bluemonday.Policy {
	safePolicyOnce.Do(func() {
		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)
	})
	return safePolicy
}

// SanitizeConfig configures the sanitize middleware.
type SanitizeConfig struct {
	Policy   *bluemonday.Policy
	Fields   []string // Payload fields to clean; empty means every string field
	Services []string
}

// SanitizeOption configures SanitizeConfig.
type SanitizeOption func(*SanitizeConfig)

// WithSanitizePolicy sets the bluemonday policy applied to strings.
func WithSanitizePolicy(p *bluemonday.Policy) SanitizeOption {
	return func(cfg *SanitizeConfig) {
		if p != nil {
			cfg.Policy = p
		}
	}
}

// WithSafeHTML keeps basic formatting tags instead of stripping all markup.
func WithSafeHTML() SanitizeOption {
	return WithSanitizePolicy(SafeHTMLPolicy())
}

// WithSanitizeFields limits cleaning to the given top-level payload fields.
func WithSanitizeFields(fields ...string) SanitizeOption {
	return func(cfg *SanitizeConfig) {
		cfg.Fields = fields
	}
}

// WithSanitizeServices restricts the middleware to the given services.
func WithSanitizeServices(services ...string) SanitizeOption {
	return func(cfg *SanitizeConfig) {
		cfg.Services = services
	}
}

type sanitize struct {
	internal.BaseMiddleware
	cfg SanitizeConfig
}

// Sanitize returns a middleware that removes HTML from string payload values
// before they reach authentication and actions. Nested objects and lists are walked.
// The service and action fields are never touched.
// By default all markup is stripped (bluemonday.StrictPolicy).
func Sanitize(opts ...SanitizeOption) internal.Middleware {
	cfg := SanitizeConfig{Policy: bluemonday.StrictPolicy()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &sanitize{cfg: cfg}
}

func (m *sanitize) Name() string { return "sanitize" }

func (m *sanitize) LimitServices() []string { return m.cfg.Services }

func (m *sanitize) OnRequest(r *internal.Request) error {
	payload := r.Payload()
	if len(m.cfg.Fields) > 0 {
		for _, f := range m.cfg.Fields {
			if v, ok := payload.Get(f); ok {
				payload.Set(f, m.clean(v))
			}
		}
		return nil
	}

	for _, k := range payload.Keys() {
		if strings.EqualFold(k, "service") || strings.EqualFold(k, "action") {
			continue
		}
		payload.Set(k, m.clean(payload.Value(k)))
	}
	return nil
}

func (m *sanitize) clean(v any) any {
	switch val := v.(type) {
	case string:
		return m.cfg.Policy.Sanitize(val)
	case *keyed.Map:
		for _, k := range val.Keys() {
			val.Set(k, m.clean(val.Value(k)))
		}
		return val
	case []any:
		for i := range val {
			val[i] = m.clean(val[i])
		}
		return val
	case []string:
		for i := range val {
			val[i] = m.cfg.Policy.Sanitize(val[i])
		}
		return val
	default:
		return v
	}
}
