package porm

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/pionia/pkg/db"
	"github.com/dmitrymomot/pionia/pkg/keyed"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DB is a PostgreSQL Executor over database/sql.
type DB struct {
	conn   *sql.DB
	q      queryer
	logger *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used to trace executed statements at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.logger = l
		}
	}
}

// New wraps conn as an Executor.
// With pgx, obtain conn via db.OpenDB(pool).
func New(conn *sql.DB, opts ...Option) *DB {
	d := &DB{
		conn:   conn,
		q:      conn,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ Executor = (*DB)(nil)

func (d *DB) Select(ctx context.Context, q Query) ([]Row, error) {
	query, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}
	return d.query(ctx, query, args)
}

func (d *DB) Count(ctx context.Context, q Query) (int64, error) {
	query, args, err := buildCount(q)
	if err != nil {
		return 0, err
	}
	d.trace(ctx, query, args)

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, errors.Join(ErrQueryFailed, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return n, nil
}

func (d *DB) Random(ctx context.Context, q Query, n int) ([]Row, error) {
	query, args, err := buildRandom(q, n)
	if err != nil {
		return nil, err
	}
	return d.query(ctx, query, args)
}

func (d *DB) Insert(ctx context.Context, table string, data *keyed.Map) (Row, error) {
	query, args, err := buildInsert(table, data)
	if err != nil {
		return nil, err
	}
	return d.queryOne(ctx, query, args)
}

func (d *DB) Update(ctx context.Context, table string, data *keyed.Map, where map[string]any) (Row, error) {
	query, args, err := buildUpdate(table, data, where)
	if err != nil {
		return nil, err
	}
	return d.queryOne(ctx, query, args)
}

func (d *DB) Delete(ctx context.Context, table string, where map[string]any) (int64, error) {
	query, args, err := buildDelete(table, where)
	if err != nil {
		return 0, err
	}
	d.trace(ctx, query, args)

	res, err := d.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return n, nil
}

// WithTx runs fn in a transaction.
// Nested calls on a transaction-bound DB reuse the outer transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx Executor) error) error {
	if d.conn == nil {
		return fn(d)
	}
	err := db.WithTx(ctx, d.conn, func(tx *sql.Tx) error {
		return fn(&DB{q: tx, logger: d.logger})
	})
	if err != nil {
		return errors.Join(ErrTxFailed, err)
	}
	return nil
}

func (d *DB) queryOne(ctx context.Context, query string, args []any) (Row, error) {
	rows, err := d.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

func (d *DB) query(ctx context.Context, query string, args []any) ([]Row, error) {
	d.trace(ctx, query, args)

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return out, nil
}

func (d *DB) trace(ctx context.Context, query string, args []any) {
	d.logger.DebugContext(ctx, "porm: executing", slog.String("query", query), slog.Int("args", len(args)))
}

// scanRows reads every row into a keyed.Map in column order.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := keyed.New()
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row.Set(c, v)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
