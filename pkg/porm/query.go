package porm

import (
	"context"
	"strings"

	"github.com/dmitrymomot/pionia/pkg/keyed"
)

// JoinType is the SQL join flavour of a relation.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	FullJoin  JoinType = "FULL"
)

// Valid reports whether t is a known join type.
func (t JoinType) Valid() bool {
	switch t {
	case InnerJoin, LeftJoin, RightJoin, FullJoin:
		return true
	}
	return false
}

// ParseJoinType converts a case-insensitive name ("left", "LEFT JOIN") to a JoinType.
// Unknown values default to InnerJoin.
func ParseJoinType(s string) JoinType {
	t := JoinType(strings.TrimSpace(strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "JOIN")))
	if t == "FULL OUTER" {
		return FullJoin
	}
	if t.Valid() {
		return t
	}
	return InnerJoin
}

// Join describes a relation joined to the main table.
// On maps a column of the main table (or of a previously joined table, in "table.column" form)
// to a column of the joined table.
type Join struct {
	On    map[string]string
	Table string
	Alias string
	Type  JoinType
}

// Name returns the identifier used to reference the joined table: the alias if set.
func (j Join) Name() string {
	if j.Alias != "" {
		return j.Alias
	}
	return j.Table
}

// Query describes a read against a table.
// Empty Columns selects every column. Where holds equality filters;
// a zero Limit means unbounded.
type Query struct {
	Where   map[string]any
	Table   string
	Columns []Column
	Joins   []Join
	Limit   int
	Offset  int
}

// Row is a single result record with columns in select order.
type Row = *keyed.Map

// Executor is the storage capability the generic CRUD layer runs against.
// Implementations must be safe for concurrent use; WithTx hands fn an Executor
// bound to a single transaction that is committed when fn returns nil and rolled back otherwise.
type Executor interface {
	// Select returns all rows matching q.
	Select(ctx context.Context, q Query) ([]Row, error)

	// Count returns the number of rows matching q, ignoring limit and offset.
	Count(ctx context.Context, q Query) (int64, error)

	// Random returns up to n randomly sampled rows matching q.
	Random(ctx context.Context, q Query, n int) ([]Row, error)

	// Insert stores data in table and returns the stored record.
	Insert(ctx context.Context, table string, data *keyed.Map) (Row, error)

	// Update applies data to the rows matching where and returns the first updated record.
	// Returns ErrNoRows if nothing matched.
	Update(ctx context.Context, table string, data *keyed.Map, where map[string]any) (Row, error)

	// Delete removes the rows matching where and returns the number of deleted rows.
	Delete(ctx context.Context, table string, where map[string]any) (int64, error)

	// WithTx runs fn inside a transaction.
	WithTx(ctx context.Context, fn func(tx Executor) error) error
}

// Connections maps connection names to executors.
type Connections map[string]Executor

// DefaultConnection is the connection name used when none is configured.
const DefaultConnection = "db"

// Single returns Connections holding exec under DefaultConnection.
func Single(exec Executor) Connections {
	return Connections{DefaultConnection: exec}
}

// Get returns the executor registered under name.
func (c Connections) Get(name string) (Executor, error) {
	if name == "" {
		name = DefaultConnection
	}
	exec, ok := c[name]
	if !ok || exec == nil {
		return nil, ErrUnknownConnection
	}
	return exec, nil
}
