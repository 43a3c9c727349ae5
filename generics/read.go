package generics

import (
	"fmt"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/keyed"
	"github.com/dmitrymomot/pionia/pkg/porm"
)

// GetOne returns the record whose primary key is in the payload.
func (g *Generic) GetOne(r *internal.Request) (any, error) {
	id, err := g.primaryKey(r)
	if err != nil {
		return nil, err
	}
	if g.hooks.GetItem != nil {
		item, ok, err := g.hooks.GetItem(r)
		if err != nil || ok {
			return item, err
		}
	}

	exec, err := g.executor()
	if err != nil {
		return nil, err
	}
	return g.fetch(r.Context(), exec, g.detailQuery(id), id)
}

// GetAllWithPagination lists records. When the payload carries a limit and
// offset pair the list is paginated and page metadata is returned.
func (g *Generic) GetAllWithPagination(r *internal.Request) (any, *Page, error) {
	if g.hooks.GetItems != nil {
		items, ok, err := g.hooks.GetItems(r)
		if err != nil || ok {
			return items, nil, err
		}
	}

	if limit, offset, ok := DetectPagination(r.Payload()); ok {
		rows, page, err := g.Paginate(r, limit, offset)
		if err != nil {
			return nil, nil, err
		}
		return rows, &page, nil
	}

	exec, err := g.executor()
	if err != nil {
		return nil, nil, err
	}
	q, err := g.listQuery(r)
	if err != nil {
		return nil, nil, err
	}
	q.Limit, q.Offset = g.cfg.Limit, g.cfg.Offset

	rows, err := exec.Select(r.Context(), q)
	if err != nil {
		return nil, nil, g.storageError("Failed to list records", err)
	}
	return rows, nil, nil
}

// Paginate returns one page of records along with the total count.
func (g *Generic) Paginate(r *internal.Request, limit, offset int) ([]porm.Row, Page, error) {
	if limit < 1 || offset < 0 {
		return nil, Page{}, internal.ErrClient("Invalid pagination: limit must be positive and offset not negative")
	}

	exec, err := g.executor()
	if err != nil {
		return nil, Page{}, err
	}
	q, err := g.listQuery(r)
	if err != nil {
		return nil, Page{}, err
	}

	total, err := exec.Count(r.Context(), q)
	if err != nil {
		return nil, Page{}, g.storageError("Failed to count records", err)
	}

	q.Limit, q.Offset = limit, offset
	rows, err := exec.Select(r.Context(), q)
	if err != nil {
		return nil, Page{}, g.storageError("Failed to list records", err)
	}
	return rows, newPage(limit, offset, total), nil
}

// RandomItems samples records. The sample size is read from "limit" or "size"
// in the payload and defaults to 1.
func (g *Generic) RandomItems(r *internal.Request) ([]porm.Row, error) {
	size := 1
	for _, key := range []string{"limit", "size"} {
		if n, ok := r.Payload().Int(key); ok {
			size = n
			break
		}
	}
	if size < 1 {
		return nil, internal.ErrClient("Invalid size: must be positive")
	}

	exec, err := g.executor()
	if err != nil {
		return nil, err
	}
	q, err := g.listQuery(r)
	if err != nil {
		return nil, err
	}

	rows, err := exec.Random(r.Context(), q, size)
	if err != nil {
		return nil, g.storageError("Failed to load records", err)
	}
	return rows, nil
}

// listQuery is the projected, joined, filtered query without a page window.
func (g *Generic) listQuery(r *internal.Request) (porm.Query, error) {
	where, err := filters(r.Payload())
	if err != nil {
		return porm.Query{}, err
	}
	return porm.Query{
		Table:   g.cfg.Table,
		Columns: g.columns,
		Joins:   g.cfg.Joins,
		Where:   where,
	}, nil
}

// filters reads equality filters from the "where" object of the payload.
func filters(payload *keyed.Map) (map[string]any, error) {
	sub, ok := payload.Sub("where")
	if !ok {
		return nil, nil
	}
	where := make(map[string]any, sub.Len())
	var bad string
	sub.Range(func(k string, v any) bool {
		switch v.(type) {
		case *keyed.Map, []any:
			bad = k
			return false
		}
		where[k] = v
		return true
	})
	if bad != "" {
		return nil, internal.ErrClient(fmt.Sprintf("Invalid filter value for %s", bad))
	}
	return where, nil
}
