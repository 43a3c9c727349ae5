package internal

import (
	"fmt"
	"slices"
)

// ServiceLimiter restricts a middleware or auth backend to a set of services.
// An empty list means every service.
type ServiceLimiter interface {
	LimitServices() []string
}

// Namer gives a chain member the name used as an AddBefore/AddAfter anchor.
// Members without a name are identified by their type, e.g. "*middlewares.RequestID".
type Namer interface {
	Name() string
}

// NameOf returns the chain name of v.
func NameOf(v any) string {
	if n, ok := v.(Namer); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", v)
}

// appliesTo reports whether v should run for service.
func appliesTo(v any, service string) bool {
	l, ok := v.(ServiceLimiter)
	if !ok {
		return true
	}
	services := l.LimitServices()
	return len(services) == 0 || slices.Contains(services, service)
}

// insertNamed returns a copy of list with item placed before or after the member named anchor.
// An existing member with the same name as item is moved. A missing anchor appends.
func insertNamed[T any](list []T, anchor string, item T, after bool) []T {
	name := NameOf(item)
	out := slices.DeleteFunc(slices.Clone(list), func(v T) bool {
		return NameOf(v) == name
	})

	i := slices.IndexFunc(out, func(v T) bool {
		return NameOf(v) == anchor
	})
	if i < 0 {
		return append(out, item)
	}
	if after {
		i++
	}
	return slices.Insert(out, i, item)
}
