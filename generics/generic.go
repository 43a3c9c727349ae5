package generics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/porm"
)

// Generic implements CRUD operations over one table.
// It is immutable after New and safe for concurrent use.
type Generic struct {
	conns   porm.Connections
	uploads UploadHandler
	logger  *slog.Logger
	hooks   Hooks
	columns []porm.Column
	cfg     Config
}

// Option configures a Generic.
type Option func(*Generic)

// WithHooks sets the stage hooks.
func WithHooks(h Hooks) Option {
	return func(g *Generic) {
		g.hooks = h
	}
}

// WithUploadHandler sets the handler for FileColumns.
func WithUploadHandler(u UploadHandler) Option {
	return func(g *Generic) {
		g.uploads = u
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generic) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Generic for cfg, running against the executor named cfg.Connection in conns.
func New(cfg Config, conns porm.Connections, opts ...Option) *Generic {
	cfg = cfg.withDefaults()
	g := &Generic{
		cfg:     cfg,
		conns:   conns,
		columns: porm.NormalizeColumns(cfg.Table, cfg.ListColumns),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective configuration.
func (g *Generic) Config() Config {
	return g.cfg
}

func (g *Generic) executor() (porm.Executor, error) {
	if g.cfg.Table == "" {
		return nil, internal.ErrServer("Service has no table configured", internal.WithCause(ErrNoTable))
	}
	exec, err := g.conns.Get(g.cfg.Connection)
	if err != nil {
		return nil, internal.ErrServer(
			fmt.Sprintf("Connection %s is not configured", g.cfg.Connection),
			internal.WithCause(err),
		)
	}
	return exec, nil
}

// primaryKey returns the primary key value from the payload.
func (g *Generic) primaryKey(r *internal.Request) (any, error) {
	v, ok := r.Payload().Get(g.cfg.PrimaryKey)
	if !ok || v == nil || v == "" {
		return nil, internal.ErrFieldRequired(g.cfg.PrimaryKey)
	}
	return v, nil
}

// detailQuery is the projected, joined lookup of one record.
func (g *Generic) detailQuery(id any) porm.Query {
	return porm.Query{
		Table:   g.cfg.Table,
		Columns: g.columns,
		Joins:   g.cfg.Joins,
		Where:   map[string]any{g.cfg.PrimaryKey: id},
		Limit:   1,
	}
}

// fetch loads one projected record; missing records are a not-found error.
func (g *Generic) fetch(ctx context.Context, exec porm.Executor, q porm.Query, id any) (porm.Row, error) {
	rows, err := exec.Select(ctx, q)
	if err != nil {
		return nil, g.storageError("Failed to load record", err)
	}
	if len(rows) == 0 {
		return nil, internal.ErrNotFound(fmt.Sprintf("Record with %s %v not found", g.cfg.PrimaryKey, id))
	}
	return rows[0], nil
}

// existing loads the raw record, every column and no joins.
func (g *Generic) existing(ctx context.Context, exec porm.Executor, id any) (porm.Row, error) {
	return g.fetch(ctx, exec, porm.Query{
		Table: g.cfg.Table,
		Where: map[string]any{g.cfg.PrimaryKey: id},
		Limit: 1,
	}, id)
}

// storageError maps executor failures to pipeline errors.
// Pipeline errors pass through; bad identifiers are the caller's fault.
func (g *Generic) storageError(msg string, err error) error {
	if internal.AsError(err) != nil {
		return err
	}
	if errors.Is(err, porm.ErrInvalidIdentifier) {
		return internal.ErrClient("Invalid field name", internal.WithCause(err))
	}
	if errors.Is(err, porm.ErrNoRows) {
		return internal.ErrNotFound("Record not found", internal.WithCause(err))
	}
	return internal.ErrServer(msg, internal.WithCause(err))
}

// isReserved reports whether key addresses the pipeline rather than a column.
func isReserved(key string) bool {
	return strings.EqualFold(key, "service") || strings.EqualFold(key, "action")
}
