// Package repository defines the platform storage contract used by the payment
// handlers: search by criteria, upsert rows. Implementations live in this package
// (in-memory) and in repository/postgres.
package repository

import (
	"context"
)

// Entity is anything addressable by a primary key.
type Entity interface {
	EntityID() string
}

// Criteria narrows a search. Empty criteria match everything.
type Criteria struct {
	IDs          []string
	Filters      map[string]string
	Associations []string
	Limit        int
}

// NewCriteria returns criteria matching the given ids.
func NewCriteria(ids ...string) Criteria {
	return Criteria{IDs: ids}
}

// AddFilter adds an equality filter and returns the criteria for chaining.
func (c Criteria) AddFilter(field, value string) Criteria {
	filters := make(map[string]string, len(c.Filters)+1)
	for k, v := range c.Filters {
		filters[k] = v
	}
	filters[field] = value
	c.Filters = filters
	return c
}

// AddAssociation requests a related entity to be loaded alongside the result.
func (c Criteria) AddAssociation(name string) Criteria {
	c.Associations = append(append([]string(nil), c.Associations...), name)
	return c
}

// HasAssociation reports whether the association was requested.
func (c Criteria) HasAssociation(name string) bool {
	for _, a := range c.Associations {
		if a == name {
			return true
		}
	}
	return false
}

// Result is the outcome of a search. An empty result is not an error.
type Result[T any] struct {
	Entities []T
}

// First returns the first entity, if any.
func (r Result[T]) First() (T, bool) {
	var zero T
	if len(r.Entities) == 0 {
		return zero, false
	}
	return r.Entities[0], true
}

// Total returns the number of entities found.
func (r Result[T]) Total() int {
	return len(r.Entities)
}

// Repository is the search/upsert contract of the host platform's storage.
type Repository[T Entity] interface {
	Search(ctx context.Context, criteria Criteria) (Result[T], error)
	Upsert(ctx context.Context, rows []T) error
}
