// Package rowstore abstracts the generic tabular persistence collaborator.
// Tables are ordered lists of string rows; the engine addresses cells by
// position and discovers meaning through the schema resolver.
package rowstore

import "context"

// Store is the row-oriented persistence boundary. Implementations offer no
// transactions; callers are expected to follow read-then-write discipline
// under their own serialization.
type Store interface {
	// ReadAll returns every row of the table in order. A missing table
	// yields an empty result, not an error.
	ReadAll(ctx context.Context, table string) ([][]string, error)
	// AppendRow adds a row at the end of the table.
	AppendRow(ctx context.Context, table string, row []string) error
	// SetCell writes a single cell, extending the row with empty cells
	// when colIndex lies past its current end.
	SetCell(ctx context.Context, table string, rowIndex, colIndex int, value string) error
	// CreateColumn appends a named column to the table's header row.
	CreateColumn(ctx context.Context, table, name string) error
}
