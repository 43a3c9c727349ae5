// Package generics provides table-backed CRUD actions for pionia services.
//
// A Generic is configured with a table, its primary key and optional column
// allow-lists and joins. It runs against a porm.Executor resolved by connection
// name, so any storage implementing porm.Executor can back it.
//
//	articles := generics.New(generics.Config{
//	    Table:         "articles",
//	    ListColumns:   []string{"id", "title", "authors.name(author)"},
//	    CreateColumns: []string{"title", "body", "author_id"},
//	    Joins: []porm.Join{{
//	        Table: "authors",
//	        Type:  porm.LeftJoin,
//	        On:    map[string]string{"author_id": "id"},
//	    }},
//	}, porm.Single(porm.New(conn)))
//
//	sw.Register("articles", articles.Service(generics.All...))
//
// # Actions
//
//	retrieve, details   one record by primary key
//	list                all records, paginated when the payload carries limit and offset
//	create              insert allow-listed fields
//	update              update allow-listed fields of one record
//	delete              delete one record by primary key
//	random              sample "limit" (or "size") records, default 1
//
// # Hooks
//
// Hooks customize each stage. Getters return ok=true to replace the storage
// lookup. Pre-hooks return ok=false to abort silently: the action then answers
// with a success envelope carrying no data, and nothing is written.
//
// # Pagination
//
// A list is paginated when both a limit and an offset are present and numeric
// at the same level of the payload: top level first, then under "pagination",
// then under "search". Page metadata is returned in the envelope's extra field.
package generics
