// Package schema maps logical field names onto the physical columns of a
// row-oriented store. Headers may be renamed, reordered or missing; the
// resolver tolerates the first two and heals the third by appending columns.
package schema

import (
	"context"
	"strings"

	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	apperrors "github.com/spec-kit/facility-helpdesk/pkg/util"
)

// headerScanDepth bounds how many leading rows are inspected for a header.
const headerScanDepth = 5

// Map resolves logical fields to column indexes for one table snapshot.
type Map map[Field]int

// Col returns the column index for a field.
func (m Map) Col(f Field) (int, bool) {
	idx, ok := m[f]
	return idx, ok
}

// Normalize lowers a header and strips every non-alphanumeric rune before
// comparison.
func Normalize(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveHeaders locates the header row within the first rows of a table.
// The first of the leading rows whose concatenated lower-cased text contains
// "date" and either "desc" or "status" wins; otherwise row 0 is assumed.
func ResolveHeaders(rows [][]string) (int, []string) {
	limit := headerScanDepth
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], " "))
		if strings.Contains(joined, "date") && (strings.Contains(joined, "desc") || strings.Contains(joined, "status")) {
			return i, rows[i]
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return 0, rows[0]
}

// BuildMap matches headers against the alias table. The first matching
// column wins for each field.
func BuildMap(headers []string) Map {
	m := make(Map)
	for col, header := range headers {
		normalized := Normalize(header)
		if normalized == "" {
			continue
		}
		for field, names := range aliases {
			if _, seen := m[field]; seen {
				continue
			}
			for _, name := range names {
				if normalized == name {
					m[field] = col
					break
				}
			}
		}
		for field, fragments := range containsRules {
			if _, seen := m[field]; seen {
				continue
			}
			for _, fragment := range fragments {
				if strings.Contains(normalized, fragment) {
					m[field] = col
					break
				}
			}
		}
	}
	return m
}

// Table is a resolved snapshot of one store table: all rows, the detected
// header position and the field map. It is recomputed per operation and must
// not be cached across mutations.
type Table struct {
	Name      string
	HeaderRow int
	Headers   []string
	Columns   Map
	Rows      [][]string
}

// Get reads a field from a data row, returning "" for unmapped fields and
// short rows.
func (t *Table) Get(row []string, f Field) string {
	col, ok := t.Columns.Col(f)
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// DataRows returns the rows below the header together with their absolute
// row indexes, as needed for positional writes.
func (t *Table) DataRows() ([][]string, []int) {
	var rows [][]string
	var indexes []int
	for i := t.HeaderRow + 1; i < len(t.Rows); i++ {
		rows = append(rows, t.Rows[i])
		indexes = append(indexes, i)
	}
	return rows, indexes
}

// Resolver reads table snapshots and self-heals missing columns.
type Resolver struct {
	store rowstore.Store
}

// NewResolver constructs a resolver over the given store.
func NewResolver(store rowstore.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve reads the table, locates its header row and ensures every required
// field has a column, appending named columns for the absent ones. An empty
// table is bootstrapped with a canonical header row. The identity field is
// never fabricated for an existing table: rows written before this service
// would carry no identifiers, so an unresolvable identity column aborts with
// a schema error carrying the observed headers.
func (r *Resolver) Resolve(ctx context.Context, table string, required []Field) (*Table, error) {
	rows, err := r.store.ReadAll(ctx, table)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		header := make([]string, 0, len(required))
		for _, field := range required {
			header = append(header, string(field))
		}
		if err := r.store.AppendRow(ctx, table, header); err != nil {
			return nil, err
		}
		rows = [][]string{header}
	}

	headerRow, headers := ResolveHeaders(rows)
	m := BuildMap(headers)

	healed := false
	for _, field := range required {
		if _, ok := m.Col(field); ok {
			continue
		}
		if field == FieldID {
			continue
		}
		if err := r.appendColumn(ctx, table, headerRow, len(headers), string(field)); err != nil {
			return nil, err
		}
		headers = append(headers, string(field))
		healed = true
	}
	if healed {
		// Positions shifted; rebuild rather than patching the stale map.
		rows[headerRow] = headers
		m = BuildMap(headers)
	}

	if _, ok := m.Col(FieldID); !ok && requires(required, FieldID) {
		return nil, apperrors.NewSchemaUnresolved(table, headers)
	}

	return &Table{
		Name:      table,
		HeaderRow: headerRow,
		Headers:   headers,
		Columns:   m,
		Rows:      rows,
	}, nil
}

// appendColumn grows the header row by one named column. CreateColumn writes
// to row 0; the rare store with banner rows above its header is healed with a
// positional write instead.
func (r *Resolver) appendColumn(ctx context.Context, table string, headerRow, width int, name string) error {
	if headerRow == 0 {
		return r.store.CreateColumn(ctx, table, name)
	}
	return r.store.SetCell(ctx, table, headerRow, width, name)
}

func requires(fields []Field, want Field) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}
