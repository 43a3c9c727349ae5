package internal

import "strings"

// ExtractorSource reads a credential or identifier from a request.
type ExtractorSource = func(*Request) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value.
func (e Extractor) Extract(r *Request) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(r); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func nonEmpty(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(r *Request) (string, bool) {
		return nonEmpty(r.Header(name))
	}
}

// FromQuery reads a URL query parameter, whatever the payload source.
func FromQuery(name string) ExtractorSource {
	return func(r *Request) (string, bool) {
		return nonEmpty(r.HTTP().URL.Query().Get(name))
	}
}

// FromPayload reads a payload field (case-insensitive).
func FromPayload(key string) ExtractorSource {
	return func(r *Request) (string, bool) {
		v, ok := r.Payload().String(key)
		if !ok {
			return "", false
		}
		return nonEmpty(v)
	}
}

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(r *Request) (string, bool) {
		c, err := r.HTTP().Cookie(name)
		if err != nil {
			return "", false
		}
		return nonEmpty(c.Value)
	}
}

// FromBearerToken reads a Bearer token from the Authorization header.
// The "Bearer " prefix is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	return func(r *Request) (string, bool) {
		auth := r.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return nonEmpty(auth[7:])
	}
}
