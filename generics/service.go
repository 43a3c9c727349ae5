package generics

import (
	"github.com/dmitrymomot/pionia/internal"
)

// Capability is a generic action group a service can expose.
type Capability string

const (
	Retrieve Capability = "retrieve"
	List     Capability = "list"
	Create   Capability = "create"
	Update   Capability = "update"
	Delete   Capability = "delete"
	Random   Capability = "random"
)

// Capability presets.
var (
	All      = []Capability{Retrieve, List, Create, Update, Delete, Random}
	ReadOnly = []Capability{Retrieve, List, Random}
	Writable = []Capability{Create, Update, Delete}
)

// Service builds a service exposing caps; no caps means All.
// The returned service can be extended with more actions and access rules.
//
// Example:
//
//	svc := articles.Service(generics.ReadOnly...).Apply(
//	    pionia.WithAction("publish", publish),
//	    pionia.ActionPermissions("publish", "articles.publish"),
//	)
func (g *Generic) Service(caps ...Capability) *internal.Service {
	if len(caps) == 0 {
		caps = All
	}
	svc := internal.NewService()
	for _, c := range caps {
		switch c {
		case Retrieve:
			svc.Handle("retrieve", g.RetrieveAction)
			svc.Handle("details", g.RetrieveAction)
		case List:
			svc.Handle("list", g.ListAction)
		case Create:
			svc.Handle("create", g.CreateAction)
		case Update:
			svc.Handle("update", g.UpdateAction)
		case Delete:
			svc.Handle("delete", g.DeleteAction)
		case Random:
			svc.Handle("random", g.RandomAction)
		}
	}
	return svc
}

// RetrieveAction answers with one record.
func (g *Generic) RetrieveAction(r *internal.Request) (*internal.Response, error) {
	item, err := g.GetOne(r)
	if err != nil {
		return nil, err
	}
	return internal.Success(item), nil
}

// ListAction answers with a list of records and, when paginated, page metadata in extra.
func (g *Generic) ListAction(r *internal.Request) (*internal.Response, error) {
	items, page, err := g.GetAllWithPagination(r)
	if err != nil {
		return nil, err
	}
	resp := internal.Success(items)
	if page != nil {
		resp.WithExtra(page)
	}
	return resp, nil
}

// CreateAction answers with the created record.
func (g *Generic) CreateAction(r *internal.Request) (*internal.Response, error) {
	item, err := g.CreateItem(r)
	if err != nil {
		return nil, err
	}
	return internal.Success(item), nil
}

// UpdateAction answers with the updated record.
func (g *Generic) UpdateAction(r *internal.Request) (*internal.Response, error) {
	item, err := g.UpdateItem(r)
	if err != nil {
		return nil, err
	}
	return internal.Success(item), nil
}

// DeleteAction answers with the deleted record.
func (g *Generic) DeleteAction(r *internal.Request) (*internal.Response, error) {
	item, err := g.DeleteItem(r)
	if err != nil {
		return nil, err
	}
	return internal.Success(item), nil
}

// RandomAction answers with a random sample of records.
func (g *Generic) RandomAction(r *internal.Request) (*internal.Response, error) {
	items, err := g.RandomItems(r)
	if err != nil {
		return nil, err
	}
	return internal.Success(items), nil
}
