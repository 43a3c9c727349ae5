// Package keyed provides an ordered, case-insensitive string-keyed map used as the
// canonical payload container for requests and responses.
//
// Client payloads often use inconsistent casing ("limit" vs "LIMIT"), so every lookup
// tries the exact key first, then its lowercase form, then its uppercase form:
//
//	m := keyed.New()
//	m.Set("LIMIT", 10)
//	v, ok := m.Get("limit") // 10, true
//
// Insertion order is preserved, which makes positional operations meaningful:
//
//	m.AddBefore("offset", "limit", 10)
//	m.AddAfter("limit", "page", 2)
//	k, v, ok := m.Shift() // first entry
//
// Merging is last-write-wins on key collision:
//
//	m.Merge(other)
//
// # Typed getters
//
// Getters coerce loosely typed values coming from JSON or form payloads:
//
//	limit, ok := m.Int("limit")    // 10 from 10, 10.0 or "10"
//	debug, ok := m.Bool("debug")   // true from true, "true", "1", "on"
//	sub, ok := m.Sub("pagination") // nested *Map
//
// # JSON
//
// A Map marshals to a JSON object with keys in insertion order. Unmarshaling keeps the
// document order and converts nested objects into nested maps.
package keyed
