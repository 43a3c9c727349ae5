package keyed

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// Parse decodes a JSON object into a new Map, keeping document order.
func Parse(data []byte) (*Map, error) {
	m := New()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the map contents with the decoded JSON object.
func (m *Map) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return ErrNotObject
	}
	m.values = make(map[string]any)
	m.keys = nil
	res.ForEach(func(k, v gjson.Result) bool {
		m.Set(k.String(), fromResult(v))
		return true
	})
	return nil
}

func fromResult(v gjson.Result) any {
	switch {
	case v.IsObject():
		sub := New()
		v.ForEach(func(k, e gjson.Result) bool {
			sub.Set(k.String(), fromResult(e))
			return true
		})
		return sub
	case v.IsArray():
		arr := v.Array()
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = fromResult(e)
		}
		return out
	}
	switch v.Type {
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			return v.Int()
		}
		return v.Num
	case gjson.String:
		return v.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

// Decode unmarshals the map into dst by round-tripping through JSON.
// Useful to bind a payload into a typed struct.
func (m *Map) Decode(dst any) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrInvalidJSON, err)
	}
	return nil
}
