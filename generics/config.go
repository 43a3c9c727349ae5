package generics

import (
	"context"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/keyed"
	"github.com/dmitrymomot/pionia/pkg/porm"
)

// Default configuration values.
const (
	DefaultPrimaryKey = "id"
)

// Config describes the table a Generic works on.
type Config struct {
	// Table is the main table. Required.
	Table string

	// PrimaryKey defaults to "id". Its value is required in the payload for
	// retrieve, update and delete.
	PrimaryKey string

	// Connection selects the executor. Defaults to porm.DefaultConnection.
	Connection string

	// Limit and Offset apply to unpaginated lists. Zero Limit means unbounded.
	Limit  int
	Offset int

	// ListColumns is the projection for retrieve and list, e.g. "title",
	// "authors.name(author)" or "authors.name AS author". Empty selects everything.
	ListColumns []string

	// CreateColumns is the create allow-list. Every listed column is required.
	// Empty accepts every payload field.
	CreateColumns []string

	// UpdateColumns is the update allow-list.
	// Empty allows every column of the existing record.
	UpdateColumns []string

	// FileColumns are filled from uploaded files through the UploadHandler.
	FileColumns []string

	// Joins are applied to retrieve and list.
	Joins []porm.Join
}

func (c Config) withDefaults() Config {
	if c.PrimaryKey == "" {
		c.PrimaryKey = DefaultPrimaryKey
	}
	if c.Connection == "" {
		c.Connection = porm.DefaultConnection
	}
	return c
}

func (c Config) isFileColumn(name string) bool {
	return slices.ContainsFunc(c.FileColumns, func(f string) bool {
		return strings.EqualFold(f, name)
	})
}

// Hooks customize the generic actions. Every hook is optional.
type Hooks struct {
	// GetItem replaces the retrieve lookup when it returns ok.
	GetItem func(r *internal.Request) (item any, ok bool, err error)

	// GetItems replaces the list lookup when it returns ok.
	GetItems func(r *internal.Request) (items any, ok bool, err error)

	// PreCreate receives the sanitized fields. A nil data keeps the input; !ok aborts.
	PreCreate func(r *internal.Request, data *keyed.Map) (out *keyed.Map, ok bool, err error)

	// PostCreate turns the stored record into the action result.
	PostCreate func(r *internal.Request, item porm.Row) (any, error)

	// PreUpdate receives the changed fields. A nil data keeps the input; !ok aborts.
	PreUpdate func(r *internal.Request, data *keyed.Map) (out *keyed.Map, ok bool, err error)

	// PostUpdate turns the re-fetched record into the action result.
	PostUpdate func(r *internal.Request, item porm.Row) (any, error)

	// PreDelete receives the record about to be deleted; !ok aborts.
	PreDelete func(r *internal.Request, item porm.Row) (ok bool, err error)

	// PostDelete receives the number of deleted rows and the original record.
	PostDelete func(r *internal.Request, deleted int64, item porm.Row) (any, error)
}

// UploadHandler stores an uploaded file and returns the value saved in its column.
// A nil value drops the column from the write.
type UploadHandler interface {
	Handle(ctx context.Context, fh *multipart.FileHeader, field string) (any, error)
}

// UploadFunc adapts a function to UploadHandler.
type UploadFunc func(ctx context.Context, fh *multipart.FileHeader, field string) (any, error)

func (f UploadFunc) Handle(ctx context.Context, fh *multipart.FileHeader, field string) (any, error) {
	return f(ctx, fh, field)
}
