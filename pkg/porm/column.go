package porm

import (
	"regexp"
	"strings"
)

// Column is a projected column.
// Table is empty for bare columns; Alias is empty when the column keeps its own name.
type Column struct {
	Table string
	Name  string
	Alias string
}

var aliasSuffix = regexp.MustCompile(`^(.+?)\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)$`)

// ParseColumn parses a column spec.
// Supported forms: "name", "table.name", "name(alias)", "table.name(alias)",
// "table.name AS alias", "*" and "table.*".
func ParseColumn(spec string) Column {
	spec = strings.TrimSpace(spec)
	var c Column

	if m := aliasSuffix.FindStringSubmatch(spec); m != nil {
		spec, c.Alias = strings.TrimSpace(m[1]), m[2]
	} else if i := strings.Index(strings.ToLower(spec), " as "); i > 0 {
		c.Alias = strings.TrimSpace(spec[i+4:])
		spec = strings.TrimSpace(spec[:i])
	}

	if i := strings.LastIndex(spec, "."); i > 0 {
		c.Table, c.Name = spec[:i], spec[i+1:]
	} else {
		c.Name = spec
	}
	return c
}

// Key returns the name the column has in result rows.
func (c Column) Key() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// IsWildcard reports whether the column selects every column ("*" or "table.*").
func (c Column) IsWildcard() bool {
	return c.Name == "*"
}

// String renders the column back in spec form.
func (c Column) String() string {
	s := c.Name
	if c.Table != "" {
		s = c.Table + "." + s
	}
	if c.Alias != "" {
		s += "(" + c.Alias + ")"
	}
	return s
}

// source returns the table the column is read from; unqualified columns belong to table.
func (c Column) source(table string) string {
	if c.Table != "" {
		return c.Table
	}
	return table
}

// sameSource reports whether bare refers to the same underlying column as aliased
// in a query over table.
func sameSource(table string, bare, aliased Column) bool {
	return bare.Name == aliased.Name && bare.source(table) == aliased.source(table)
}

// NormalizeColumns parses column specs for a query over table and removes redundant entries.
// Dotted columns are kept with their table but render under their bare name.
// When the same underlying column appears both without an alias and with an alias, the
// aliased form wins and the unaliased one is dropped. Unqualified columns are read from
// table. A "*" entry anywhere yields an empty projection.
func NormalizeColumns(table string, specs []string) []Column {
	parsed := make([]Column, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		c := ParseColumn(s)
		if c.IsWildcard() && c.Table == "" {
			return nil
		}
		parsed = append(parsed, c)
	}

	out := make([]Column, 0, len(parsed))
	for i, c := range parsed {
		if c.Alias == "" && !c.IsWildcard() && shadowed(table, c, parsed) {
			continue
		}
		if duplicate(c, parsed[:i]) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func shadowed(table string, bare Column, all []Column) bool {
	for _, other := range all {
		if other.Alias != "" && sameSource(table, bare, other) {
			return true
		}
	}
	return false
}

func duplicate(c Column, seen []Column) bool {
	for _, s := range seen {
		if s == c {
			return true
		}
	}
	return false
}
