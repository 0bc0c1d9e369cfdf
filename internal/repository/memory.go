package repository

import (
	"context"
	"sort"
	"sync"
)

// FieldsFunc exposes the filterable fields of an entity to Memory.
type FieldsFunc[T Entity] func(T) map[string]string

// Memory is an in-process Repository used by tests and the demo server.
type Memory[T Entity] struct {
	mu     sync.RWMutex
	rows   map[string]T
	order  []string
	fields FieldsFunc[T]
}

// NewMemory creates an empty in-memory repository. fields may be nil, in which case
// criteria filters never match.
func NewMemory[T Entity](fields FieldsFunc[T], seed ...T) *Memory[T] {
	m := &Memory[T]{
		rows:   make(map[string]T),
		fields: fields,
	}
	for _, row := range seed {
		m.put(row)
	}
	return m
}

func (m *Memory[T]) put(row T) {
	id := row.EntityID()
	if _, exists := m.rows[id]; !exists {
		m.order = append(m.order, id)
	}
	m.rows[id] = row
}

// Search returns rows matching all ids and filters, in insertion order.
func (m *Memory[T]) Search(_ context.Context, criteria Criteria) (Result[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.order
	if len(criteria.IDs) > 0 {
		wanted := make(map[string]struct{}, len(criteria.IDs))
		for _, id := range criteria.IDs {
			wanted[id] = struct{}{}
		}
		ids = make([]string, 0, len(criteria.IDs))
		for _, id := range m.order {
			if _, ok := wanted[id]; ok {
				ids = append(ids, id)
			}
		}
	}

	var out []T
	for _, id := range ids {
		row := m.rows[id]
		if !m.matches(row, criteria.Filters) {
			continue
		}
		out = append(out, row)
		if criteria.Limit > 0 && len(out) == criteria.Limit {
			break
		}
	}
	return Result[T]{Entities: out}, nil
}

func (m *Memory[T]) matches(row T, filters map[string]string) bool {
	if len(filters) == 0 {
		return true
	}
	if m.fields == nil {
		return false
	}
	values := m.fields(row)
	for k, v := range filters {
		if values[k] != v {
			return false
		}
	}
	return true
}

// Upsert inserts or replaces rows by id.
func (m *Memory[T]) Upsert(_ context.Context, rows []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		m.put(row)
	}
	return nil
}

// IDs returns the stored ids sorted, for assertions in tests.
func (m *Memory[T]) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := append([]string(nil), m.order...)
	sort.Strings(ids)
	return ids
}
