package porm

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/dmitrymomot/pionia/pkg/keyed"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quote renders a PostgreSQL identifier, rejecting anything that is not a plain name.
func quote(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return `"` + name + `"`, nil
}

// quoteRef renders "column" or "table.column", qualifying bare columns with table when set.
func quoteRef(ref, table string) (string, error) {
	if i := strings.LastIndex(ref, "."); i > 0 {
		table, ref = ref[:i], ref[i+1:]
	}
	col, err := quote(ref)
	if err != nil {
		return "", err
	}
	if table == "" {
		return col, nil
	}
	t, err := quote(table)
	if err != nil {
		return "", err
	}
	return t + "." + col, nil
}

// builder accumulates SQL text and positional arguments.
type builder struct {
	sb   strings.Builder
	args []any
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

// bind appends an argument and returns its placeholder.
func (b *builder) bind(v any) string {
	b.args = append(b.args, sqlValue(v))
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) String() string { return b.sb.String() }

// sqlValue converts structured payload values into something a driver accepts.
func sqlValue(v any) any {
	switch t := v.(type) {
	case *keyed.Map, []any, map[string]any:
		data, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		return string(data)
	}
	return v
}

// qualifier is the table used to qualify bare column references.
// Only set when joins are present, where bare names may be ambiguous.
func (q Query) qualifier() string {
	if len(q.Joins) > 0 {
		return q.Table
	}
	return ""
}

func (b *builder) selectList(q Query) error {
	if len(q.Columns) == 0 {
		b.write("*")
		return nil
	}
	for i, c := range q.Columns {
		if i > 0 {
			b.write(", ")
		}
		table := c.Table
		if table == "" {
			table = q.qualifier()
		}
		if c.IsWildcard() {
			t, err := quote(table)
			if err != nil {
				return err
			}
			b.write(t, ".*")
			continue
		}
		ref, err := quoteRef(c.Name, table)
		if err != nil {
			return err
		}
		b.write(ref)
		if c.Alias != "" || table != "" {
			alias, err := quote(c.Key())
			if err != nil {
				return err
			}
			b.write(" AS ", alias)
		}
	}
	return nil
}

func (b *builder) from(q Query) error {
	t, err := quote(q.Table)
	if err != nil {
		return err
	}
	b.write(" FROM ", t)

	for _, j := range q.Joins {
		typ := j.Type
		if !typ.Valid() {
			typ = InnerJoin
		}
		jt, err := quote(j.Table)
		if err != nil {
			return err
		}
		b.write(" ", string(typ), " JOIN ", jt)
		if j.Alias != "" {
			a, err := quote(j.Alias)
			if err != nil {
				return err
			}
			b.write(" AS ", a)
		}
		if len(j.On) == 0 {
			continue
		}
		b.write(" ON ")
		for i, local := range slices.Sorted(maps.Keys(j.On)) {
			if i > 0 {
				b.write(" AND ")
			}
			l, err := quoteRef(local, q.Table)
			if err != nil {
				return err
			}
			r, err := quoteRef(j.On[local], j.Name())
			if err != nil {
				return err
			}
			b.write(l, " = ", r)
		}
	}
	return nil
}

func (b *builder) where(where map[string]any, table string) error {
	if len(where) == 0 {
		return nil
	}
	b.write(" WHERE ")
	for i, k := range slices.Sorted(maps.Keys(where)) {
		if i > 0 {
			b.write(" AND ")
		}
		ref, err := quoteRef(k, table)
		if err != nil {
			return err
		}
		if where[k] == nil {
			b.write(ref, " IS NULL")
			continue
		}
		b.write(ref, " = ", b.bind(where[k]))
	}
	return nil
}

func (b *builder) page(limit, offset int) {
	if limit > 0 {
		b.write(fmt.Sprintf(" LIMIT %d", limit))
	}
	if offset > 0 {
		b.write(fmt.Sprintf(" OFFSET %d", offset))
	}
}

// buildSelect renders a SELECT for q.
func buildSelect(q Query) (string, []any, error) {
	var b builder
	b.write("SELECT ")
	if err := b.selectList(q); err != nil {
		return "", nil, err
	}
	if err := b.from(q); err != nil {
		return "", nil, err
	}
	if err := b.where(q.Where, q.qualifier()); err != nil {
		return "", nil, err
	}
	b.page(q.Limit, q.Offset)
	return b.String(), b.args, nil
}

// buildCount renders a COUNT(*) for q, ignoring its page window.
func buildCount(q Query) (string, []any, error) {
	var b builder
	b.write("SELECT COUNT(*)")
	if err := b.from(q); err != nil {
		return "", nil, err
	}
	if err := b.where(q.Where, q.qualifier()); err != nil {
		return "", nil, err
	}
	return b.String(), b.args, nil
}

// buildRandom renders a random sample of n rows for q.
func buildRandom(q Query, n int) (string, []any, error) {
	var b builder
	b.write("SELECT ")
	if err := b.selectList(q); err != nil {
		return "", nil, err
	}
	if err := b.from(q); err != nil {
		return "", nil, err
	}
	if err := b.where(q.Where, q.qualifier()); err != nil {
		return "", nil, err
	}
	b.write(" ORDER BY RANDOM()")
	b.page(max(n, 1), 0)
	return b.String(), b.args, nil
}

func buildInsert(table string, data *keyed.Map) (string, []any, error) {
	if data.Len() == 0 {
		return "", nil, ErrEmptyData
	}
	t, err := quote(table)
	if err != nil {
		return "", nil, err
	}

	var b builder
	cols := make([]string, 0, data.Len())
	vals := make([]string, 0, data.Len())
	var qerr error
	data.Range(func(k string, v any) bool {
		c, err := quote(k)
		if err != nil {
			qerr = err
			return false
		}
		cols = append(cols, c)
		vals = append(vals, b.bind(v))
		return true
	})
	if qerr != nil {
		return "", nil, qerr
	}

	b.write("INSERT INTO ", t, " (", strings.Join(cols, ", "), ") VALUES (", strings.Join(vals, ", "), ") RETURNING *")
	return b.String(), b.args, nil
}

func buildUpdate(table string, data *keyed.Map, where map[string]any) (string, []any, error) {
	if data.Len() == 0 {
		return "", nil, ErrEmptyData
	}
	if len(where) == 0 {
		return "", nil, ErrUnsafeWrite
	}
	t, err := quote(table)
	if err != nil {
		return "", nil, err
	}

	var b builder
	b.write("UPDATE ", t, " SET ")
	var qerr error
	i := 0
	data.Range(func(k string, v any) bool {
		c, err := quote(k)
		if err != nil {
			qerr = err
			return false
		}
		if i > 0 {
			b.write(", ")
		}
		b.write(c, " = ", b.bind(v))
		i++
		return true
	})
	if qerr != nil {
		return "", nil, qerr
	}
	if err := b.where(where, ""); err != nil {
		return "", nil, err
	}
	b.write(" RETURNING *")
	return b.String(), b.args, nil
}

func buildDelete(table string, where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, ErrUnsafeWrite
	}
	t, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	var b builder
	b.write("DELETE FROM ", t)
	if err := b.where(where, ""); err != nil {
		return "", nil, err
	}
	return b.String(), b.args, nil
}
