package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process RecordStore. Values are compared by their printed
// form, so a raw "5" from a query string matches an int 5 in a record.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string][]Record)}
}

// Add appends records to a model, creating it if needed.
func (m *Memory) Add(model string, recs ...Record) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[model] = append(m.records[model], recs...)
	return m
}

func (m *Memory) rows(model string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.records[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return rows, nil
}

func (m *Memory) FindOne(ctx context.Context, model, field string, value any) (Record, error) {
	rows, err := m.rows(model)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if sameValue(r[field], value) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%s where %s = %v: %w", model, field, value, ErrNotFound)
}

func (m *Memory) FindMany(ctx context.Context, model, field string, value any) ([]Record, error) {
	rows, err := m.rows(model)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for _, r := range rows {
		if sameValue(r[field], value) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) FindIn(ctx context.Context, model, field string, values []any) ([]Record, error) {
	rows, err := m.rows(model)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for _, r := range rows {
		for _, v := range values {
			if sameValue(r[field], v) {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
