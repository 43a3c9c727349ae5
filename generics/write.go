package generics

import (
	"strings"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/keyed"
	"github.com/dmitrymomot/pionia/pkg/porm"
)

// CreateItem validates and stores a new record.
// Returns nil without error when PreCreate aborts.
func (g *Generic) CreateItem(r *internal.Request) (any, error) {
	exec, err := g.executor()
	if err != nil {
		return nil, err
	}

	data, err := g.createData(r)
	if err != nil {
		return nil, err
	}

	if g.hooks.PreCreate != nil {
		out, ok, err := g.hooks.PreCreate(r, data)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if out != nil {
			data = out
		}
	}

	var item porm.Row
	err = exec.WithTx(r.Context(), func(tx porm.Executor) error {
		var err error
		item, err = tx.Insert(r.Context(), g.cfg.Table, data)
		return err
	})
	if err != nil {
		return nil, g.storageError("Failed to create record", err)
	}

	if g.hooks.PostCreate != nil {
		return g.hooks.PostCreate(r, item)
	}
	return item, nil
}

// createData builds the sanitized create fields.
func (g *Generic) createData(r *internal.Request) (*keyed.Map, error) {
	payload := r.Payload()

	if len(g.cfg.CreateColumns) == 0 {
		data := keyed.New()
		payload.Range(func(k string, v any) bool {
			if !isReserved(k) && !g.cfg.isFileColumn(k) {
				data.Set(k, v)
			}
			return true
		})
		if err := g.attachFiles(r, data, g.cfg.FileColumns); err != nil {
			return nil, err
		}
		return data, nil
	}

	for _, col := range g.cfg.CreateColumns {
		if g.cfg.isFileColumn(col) {
			if _, ok := r.File(col); !ok {
				return nil, internal.ErrFieldRequired(col)
			}
			continue
		}
		if v, ok := payload.Get(col); !ok || v == nil {
			return nil, internal.ErrFieldRequired(col)
		}
	}

	data := keyed.New()
	var files []string
	for _, col := range g.cfg.CreateColumns {
		if g.cfg.isFileColumn(col) {
			files = append(files, col)
			continue
		}
		data.Set(col, payload.Value(col))
	}
	if err := g.attachFiles(r, data, files); err != nil {
		return nil, err
	}
	return data, nil
}

// UpdateItem applies allowed payload fields to the record named by the primary key
// and returns the re-fetched record. Returns nil without error when PreUpdate aborts.
func (g *Generic) UpdateItem(r *internal.Request) (any, error) {
	id, err := g.primaryKey(r)
	if err != nil {
		return nil, err
	}
	exec, err := g.executor()
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	current, err := g.existing(ctx, exec, id)
	if err != nil {
		return nil, err
	}

	data, err := g.updateData(r, current)
	if err != nil {
		return nil, err
	}

	if g.hooks.PreUpdate != nil {
		out, ok, err := g.hooks.PreUpdate(r, data)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if out != nil {
			data = out
		}
	}

	if data.Len() > 0 {
		err = exec.WithTx(ctx, func(tx porm.Executor) error {
			_, err := tx.Update(ctx, g.cfg.Table, data, map[string]any{g.cfg.PrimaryKey: id})
			return err
		})
		if err != nil {
			return nil, g.storageError("Failed to update record", err)
		}
	}

	item, err := g.fetch(ctx, exec, g.detailQuery(id), id)
	if err != nil {
		return nil, err
	}

	if g.hooks.PostUpdate != nil {
		return g.hooks.PostUpdate(r, item)
	}
	return item, nil
}

// updateData collects the payload fields allowed to overwrite current.
func (g *Generic) updateData(r *internal.Request, current porm.Row) (*keyed.Map, error) {
	allowed := g.cfg.UpdateColumns
	if len(allowed) == 0 {
		allowed = current.Keys()
	}

	payload := r.Payload()
	data := keyed.New()
	var files []string
	for _, col := range allowed {
		if strings.EqualFold(col, g.cfg.PrimaryKey) {
			continue
		}
		if g.cfg.isFileColumn(col) {
			if _, ok := r.File(col); ok {
				files = append(files, col)
			}
			continue
		}
		if v, ok := payload.Get(col); ok {
			data.Set(col, v)
		}
	}
	if err := g.attachFiles(r, data, files); err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteItem removes the record named by the primary key.
// Returns nil without error when PreDelete aborts.
func (g *Generic) DeleteItem(r *internal.Request) (any, error) {
	id, err := g.primaryKey(r)
	if err != nil {
		return nil, err
	}
	exec, err := g.executor()
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	item, err := g.existing(ctx, exec, id)
	if err != nil {
		return nil, err
	}

	if g.hooks.PreDelete != nil {
		ok, err := g.hooks.PreDelete(r, item)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	var deleted int64
	err = exec.WithTx(ctx, func(tx porm.Executor) error {
		var err error
		deleted, err = tx.Delete(ctx, g.cfg.Table, map[string]any{g.cfg.PrimaryKey: id})
		return err
	})
	if err != nil {
		return nil, g.storageError("Failed to delete record", err)
	}

	if g.hooks.PostDelete != nil {
		return g.hooks.PostDelete(r, deleted, item)
	}
	return item, nil
}

// attachFiles stores the files uploaded under cols and sets the returned values on data.
// A nil or false value drops the column.
func (g *Generic) attachFiles(r *internal.Request, data *keyed.Map, cols []string) error {
	for _, col := range cols {
		fh, ok := r.File(col)
		if !ok {
			continue
		}
		if g.uploads == nil {
			return internal.ErrServer("File uploads are not configured", internal.WithCause(ErrNoUploadHandler))
		}

		v, err := g.uploads.Handle(r.Context(), fh, col)
		if err != nil {
			if internal.AsError(err) != nil {
				return err
			}
			return internal.ErrServer("Failed to store file "+col, internal.WithCause(err))
		}
		if v == nil || v == false {
			data.Delete(col)
			continue
		}
		data.Set(col, v)
	}
	return nil
}
