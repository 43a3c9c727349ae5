package generics

import "github.com/dmitrymomot/pionia/pkg/keyed"

// paginationScopes are checked in order after the top level.
var paginationScopes = []string{"pagination", "search"}

// DetectPagination looks for a numeric limit and offset pair in payload.
// Both keys must sit at the same level: the top level wins, then "pagination",
// then "search". Key case is irrelevant.
func DetectPagination(payload *keyed.Map) (limit, offset int, ok bool) {
	if payload == nil {
		return 0, 0, false
	}
	if limit, offset, ok = pageAt(payload); ok {
		return limit, offset, true
	}
	for _, scope := range paginationScopes {
		sub, found := payload.Sub(scope)
		if !found {
			continue
		}
		if limit, offset, ok = pageAt(sub); ok {
			return limit, offset, true
		}
	}
	return 0, 0, false
}

func pageAt(m *keyed.Map) (int, int, bool) {
	l, lok := m.Get("limit")
	o, ook := m.Get("offset")
	if !lok || !ook || !keyed.IsNumeric(l) || !keyed.IsNumeric(o) {
		return 0, 0, false
	}
	limit, _ := keyed.ToInt(l)
	offset, _ := keyed.ToInt(o)
	return limit, offset, true
}

// Page is the metadata of a paginated list.
type Page struct {
	NextOffset *int  `json:"next_offset"`
	PrevOffset *int  `json:"prev_offset"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

func newPage(limit, offset int, total int64) Page {
	p := Page{Limit: limit, Offset: offset, Total: total}
	if next := offset + limit; int64(next) < total {
		p.NextOffset = &next
	}
	if offset > 0 {
		prev := max(offset-limit, 0)
		p.PrevOffset = &prev
	}
	return p
}
