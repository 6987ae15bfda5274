package store

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"custodian/internal/dsr"
)

// InMemoryPersonalData holds personal-data rows per table for tests and
// single-node runs. Rows are addressed by their "id" value.
type InMemoryPersonalData struct {
	mu     sync.RWMutex
	tables map[string][]map[string]any
}

func NewPersonalData() *InMemoryPersonalData {
	return &InMemoryPersonalData{tables: make(map[string][]map[string]any)}
}

// Seed appends a row to table, creating the table if needed.
func (s *InMemoryPersonalData) Seed(table string, row map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], maps.Clone(row))
}

// Rows returns a copy of every row in table.
func (s *InMemoryPersonalData) Rows(table string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]any, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		out = append(out, maps.Clone(row))
	}
	return out
}

func matches(row map[string]any, column, value string) bool {
	v, ok := row[column]
	return ok && fmt.Sprint(v) == value
}

// Export returns an empty result for tables that were never seeded, the way
// an empty table behaves.
func (s *InMemoryPersonalData) Export(_ context.Context, t dsr.Table, subjectID string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []map[string]any{}
	for _, row := range s.tables[t.Name] {
		if matches(row, t.SubjectColumn, subjectID) {
			out = append(out, maps.Clone(row))
		}
	}
	return out, nil
}

func (s *InMemoryPersonalData) Delete(_ context.Context, t dsr.Table, subjectID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[t.Name]
	kept := rows[:0]
	var n int64
	for _, row := range rows {
		if matches(row, t.SubjectColumn, subjectID) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	s.tables[t.Name] = kept
	return n, nil
}

func (s *InMemoryPersonalData) Rectify(_ context.Context, t dsr.Table, subjectID, recordID string, fields map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, row := range s.tables[t.Name] {
		if matches(row, "id", recordID) && matches(row, t.SubjectColumn, subjectID) {
			maps.Copy(row, fields)
			n++
		}
	}
	return n, nil
}
