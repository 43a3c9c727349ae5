package keyed

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// String returns the value under key as a string.
// Non-string scalars are formatted with fmt.Sprint.
func (m *Map) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case *Map, []any, map[string]any:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}

// Int returns the value under key as an int.
// Accepts integer and float numbers as well as numeric strings.
func (m *Map) Int(key string) (int, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return ToInt(v)
}

// Float returns the value under key as a float64.
func (m *Map) Float(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// Bool returns the value under key as a bool.
// Accepts booleans, numbers (non-zero is true) and the strings
// "1", "true", "yes", "on", "0", "false", "no", "off".
func (m *Map) Bool(key string) (bool, bool) {
	v, ok := m.Get(key)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off", "":
			return false, true
		}
		return false, false
	default:
		f, ok := ToFloat(v)
		if !ok {
			return false, false
		}
		return f != 0, true
	}
}

// Slice returns the value under key as a []any.
// A []string is converted element by element.
func (m *Map) Slice(key string) ([]any, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// Strings returns the value under key as a []string.
// A single string is returned as a one-element slice.
func (m *Map) Strings(key string) ([]string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Sub returns the nested map stored under key.
func (m *Map) Sub(key string) (*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case *Map:
		return t, t != nil
	case map[string]any:
		return FromMap(t), true
	default:
		return nil, false
	}
}

// IsNumeric reports whether v is a number or a string holding a number.
func IsNumeric(v any) bool {
	_, ok := ToFloat(v)
	return ok
}

// ToFloat converts numbers and numeric strings to float64.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToInt converts numbers and numeric strings to int, truncating fractions.
func ToInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i, true
		}
	}
	f, ok := ToFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
