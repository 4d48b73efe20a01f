package rowstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a mutex-guarded in-process Store used by tests and the
// development backend. Rows may be ragged; readers see defensive copies.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][][]string)}
}

// Seed replaces a table's contents wholesale. Test helper.
func (s *MemoryStore) Seed(table string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	s.tables[table] = copied
}

func (s *MemoryStore) ReadAll(_ context.Context, table string) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.tables[table]
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (s *MemoryStore) AppendRow(_ context.Context, table string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], append([]string(nil), row...))
	return nil
}

func (s *MemoryStore) SetCell(_ context.Context, table string, rowIndex, colIndex int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("rowstore: row %d out of range in table %s", rowIndex, table)
	}
	row := rows[rowIndex]
	for len(row) <= colIndex {
		row = append(row, "")
	}
	row[colIndex] = value
	rows[rowIndex] = row
	return nil
}

func (s *MemoryStore) CreateColumn(_ context.Context, table, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if len(rows) == 0 {
		s.tables[table] = [][]string{{name}}
		return nil
	}
	rows[0] = append(rows[0], name)
	return nil
}
