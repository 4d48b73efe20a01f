package rowstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists tables as ordered rows of text cells in a single
// grid_rows relation. Dynamic columns never touch the SQL schema; they live
// inside the cells array, so healing requires no DDL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connected pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Bootstrap creates the backing relation when absent.
func (s *PostgresStore) Bootstrap(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS grid_rows (
            table_name TEXT   NOT NULL,
            row_index  INT    NOT NULL,
            cells      TEXT[] NOT NULL,
            PRIMARY KEY (table_name, row_index)
        )`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

func (s *PostgresStore) ReadAll(ctx context.Context, table string) ([][]string, error) {
	const query = `SELECT cells FROM grid_rows WHERE table_name=$1 ORDER BY row_index`
	rows, err := s.pool.Query(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, err
		}
		result = append(result, cells)
	}
	return result, rows.Err()
}

func (s *PostgresStore) AppendRow(ctx context.Context, table string, row []string) error {
	const query = `
        INSERT INTO grid_rows (table_name, row_index, cells)
        SELECT $1, COALESCE(MAX(row_index)+1, 0), $2 FROM grid_rows WHERE table_name=$1`
	_, err := s.pool.Exec(ctx, query, table, row)
	return err
}

func (s *PostgresStore) SetCell(ctx context.Context, table string, rowIndex, colIndex int, value string) error {
	const query = `SELECT cells FROM grid_rows WHERE table_name=$1 AND row_index=$2`
	var cells []string
	if err := s.pool.QueryRow(ctx, query, table, rowIndex).Scan(&cells); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("rowstore: row %d out of range in table %s", rowIndex, table)
		}
		return err
	}
	for len(cells) <= colIndex {
		cells = append(cells, "")
	}
	cells[colIndex] = value

	const update = `UPDATE grid_rows SET cells=$3 WHERE table_name=$1 AND row_index=$2`
	_, err := s.pool.Exec(ctx, update, table, rowIndex, cells)
	return err
}

func (s *PostgresStore) CreateColumn(ctx context.Context, table, name string) error {
	const query = `SELECT cells FROM grid_rows WHERE table_name=$1 AND row_index=0`
	var cells []string
	err := s.pool.QueryRow(ctx, query, table).Scan(&cells)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return s.AppendRow(ctx, table, []string{name})
	case err != nil:
		return err
	}

	cells = append(cells, name)
	const update = `UPDATE grid_rows SET cells=$2 WHERE table_name=$1 AND row_index=0`
	_, err = s.pool.Exec(ctx, update, table, cells)
	return err
}
