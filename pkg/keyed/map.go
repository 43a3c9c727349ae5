package keyed

import (
	"maps"
	"slices"
	"strings"
)

// Map is an ordered string-keyed map with case-insensitive lookups.
// The zero value is not usable; create maps with New or FromMap.
// A Map is not safe for concurrent use.
type Map struct {
	values map[string]any
	keys   []string
}

// New creates an empty Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

// FromMap creates a Map from a plain map.
// Go maps are unordered, so keys are inserted in sorted order to keep the result deterministic.
// Nested map[string]any values are converted to *Map.
func FromMap(src map[string]any) *Map {
	m := New()
	for _, k := range slices.Sorted(maps.Keys(src)) {
		m.Set(k, normalize(src[k]))
	}
	return m
}

// Of creates a Map from alternating key/value arguments.
// Non-string keys and a trailing key without value are ignored.
//
// Example:
//
//	m := keyed.Of("service", "articles", "action", "list")
func Of(pairs ...any) *Map {
	m := New()
	for i := 0; i+1 < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			continue
		}
		m.Set(k, normalize(pairs[i+1]))
	}
	return m
}

// resolve finds the stored key matching key: exact, then lowercase, then uppercase.
func (m *Map) resolve(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	if _, ok := m.values[key]; ok {
		return key, true
	}
	if lower := strings.ToLower(key); lower != key {
		if _, ok := m.values[lower]; ok {
			return lower, true
		}
	}
	if upper := strings.ToUpper(key); upper != key {
		if _, ok := m.values[upper]; ok {
			return upper, true
		}
	}
	return "", false
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	k, ok := m.resolve(key)
	if !ok {
		return nil, false
	}
	return m.values[k], true
}

// Value returns the value stored under key, or nil.
func (m *Map) Value(key string) any {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.resolve(key)
	return ok
}

// Filled reports whether key is present and holds a non-nil value.
func (m *Map) Filled(key string) bool {
	v, ok := m.Get(key)
	return ok && v != nil
}

// Set stores value under key.
// An existing key (matched case-insensitively) keeps its position and spelling.
func (m *Map) Set(key string, value any) *Map {
	if k, ok := m.resolve(key); ok {
		m.values[k] = value
		return m
	}
	m.values[key] = value
	m.keys = append(m.keys, key)
	return m
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	k, ok := m.resolve(key)
	if !ok {
		return false
	}
	delete(m.values, k)
	m.keys = slices.DeleteFunc(m.keys, func(s string) bool { return s == k })
	return true
}

// Merge copies every entry of other into m. Colliding keys take the value from other.
func (m *Map) Merge(other *Map) *Map {
	if other == nil {
		return m
	}
	for _, k := range other.keys {
		m.Set(k, other.values[k])
	}
	return m
}

// AddBefore inserts key right before anchor.
// If key already exists it is moved. If anchor is missing the entry is appended.
func (m *Map) AddBefore(anchor, key string, value any) *Map {
	return m.insertAt(anchor, key, value, 0)
}

// AddAfter inserts key right after anchor.
// If key already exists it is moved. If anchor is missing the entry is appended.
func (m *Map) AddAfter(anchor, key string, value any) *Map {
	return m.insertAt(anchor, key, value, 1)
}

func (m *Map) insertAt(anchor, key string, value any, shift int) *Map {
	m.Delete(key)
	a, ok := m.resolve(anchor)
	if !ok {
		return m.Set(key, value)
	}
	idx := slices.Index(m.keys, a) + shift
	m.values[key] = value
	m.keys = slices.Insert(m.keys, idx, key)
	return m
}

// Shift removes and returns the first entry.
func (m *Map) Shift() (string, any, bool) {
	if m.Len() == 0 {
		return "", nil, false
	}
	k := m.keys[0]
	v := m.values[k]
	m.keys = m.keys[1:]
	delete(m.values, k)
	return k, v, true
}

// Pop removes and returns the last entry.
func (m *Map) Pop() (string, any, bool) {
	if m.Len() == 0 {
		return "", nil, false
	}
	k := m.keys[len(m.keys)-1]
	v := m.values[k]
	m.keys = m.keys[:len(m.keys)-1]
	delete(m.values, k)
	return k, v, true
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy of m. Nested maps are cloned too.
func (m *Map) Clone() *Map {
	c := New()
	m.Range(func(k string, v any) bool {
		if sub, ok := v.(*Map); ok {
			v = sub.Clone()
		}
		c.Set(k, v)
		return true
	})
	return c
}

// Only returns a new Map holding the given keys that are present in m, in the given order.
func (m *Map) Only(keys ...string) *Map {
	out := New()
	for _, k := range keys {
		if v, ok := m.Get(k); ok {
			out.Set(k, v)
		}
	}
	return out
}

// Except returns a new Map without the given keys.
func (m *Map) Except(keys ...string) *Map {
	out := m.Clone()
	for _, k := range keys {
		out.Delete(k)
	}
	return out
}

// ToMap converts m into a plain map, recursively.
func (m *Map) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v any) bool {
		out[k] = plain(v)
		return true
	})
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.ToMap()
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = plain(e)
		}
		return s
	default:
		return v
	}
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = normalize(e)
		}
		return s
	default:
		return v
	}
}
