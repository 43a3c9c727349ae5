// Package porm is the storage layer behind pionia's generic CRUD services.
//
// It defines the [Executor] contract the CRUD engine runs against and a PostgreSQL
// implementation, [DB], that renders equality-filtered queries with quoted identifiers
// and positional arguments. Result rows are [github.com/dmitrymomot/pionia/pkg/keyed.Map]
// values so column order survives into the JSON response.
//
// Columns are written the way services declare them:
//
//	porm.NormalizeColumns("articles", []string{"id", "title", "users.name(author)"})
//
// A dotted column is qualified in SQL but returned under its bare name; an alias in
// parentheses (or "x AS y") renames it. When the same column is listed both bare and
// aliased, only the aliased form is selected; unqualified columns belong to the queried table.
//
// Named connections are grouped in [Connections]; "db" is the default name.
package porm
