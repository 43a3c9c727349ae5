package internal

import "github.com/dmitrymomot/pionia/pkg/keyed"

// ContextValue returns the request-scoped value stored under key, or the zero value.
func ContextValue[T any](r *Request, key any) T {
	if v, ok := r.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// PayloadValue returns the payload field key converted to T.
// Returns the zero value if the field is missing or cannot be converted.
func PayloadValue[T ~string | ~int | ~int64 | ~float64 | ~bool](r *Request, key string) T {
	v, _ := payloadValue[T](r.Payload(), key)
	return v
}

// PayloadDefault returns the payload field key converted to T, or defaultValue.
func PayloadDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](r *Request, key string, defaultValue T) T {
	v, ok := payloadValue[T](r.Payload(), key)
	if !ok {
		return defaultValue
	}
	return v
}

func payloadValue[T ~string | ~int | ~int64 | ~float64 | ~bool](m *keyed.Map, key string) (T, bool) {
	var (
		zero T
		v    any
		ok   bool
	)
	switch any(zero).(type) {
	case string:
		v, ok = m.String(key)
	case int:
		v, ok = m.Int(key)
	case int64:
		var i int
		i, ok = m.Int(key)
		v = int64(i)
	case float64:
		v, ok = m.Float(key)
	case bool:
		v, ok = m.Bool(key)
	}
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
