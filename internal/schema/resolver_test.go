package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	apperrors "github.com/spec-kit/facility-helpdesk/pkg/util"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Ticket ID":    "ticketid",
		"  Ref. No ":   "refno",
		"REPORTED_BY":  "reportedby",
		"Target-Date":  "targetdate",
		"Rating (1-5)": "rating15",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in))
	}
}

func TestResolveHeaders(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		wantRow int
	}{
		{
			name:    "header at row zero",
			rows:    [][]string{{"Ticket ID", "Description", "Status", "Created Date"}},
			wantRow: 0,
		},
		{
			name: "banner rows above the header",
			rows: [][]string{
				{"Facility Helpdesk"},
				{"Exported 2024-03-01"},
				{"Ref No", "Desc", "Status", "Reported Date"},
				{"SBH00001", "Leaking tap", "Open", "2024-02-20"},
			},
			wantRow: 2,
		},
		{
			name: "no recognizable header defaults to row zero",
			rows: [][]string{
				{"alpha", "beta"},
				{"gamma", "delta"},
			},
			wantRow: 0,
		},
		{
			name:    "empty table",
			rows:    nil,
			wantRow: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row, headers := ResolveHeaders(tc.rows)
			assert.Equal(t, tc.wantRow, row)
			if len(tc.rows) > 0 {
				assert.Equal(t, tc.rows[tc.wantRow], headers)
			}
		})
	}
}

func TestBuildMapAliases(t *testing.T) {
	headers := []string{"Ref No", "Desc", "Status", "Contact Phone Number", "Raised By", "Due Date"}
	m := BuildMap(headers)

	id, ok := m.Col(FieldID)
	require.True(t, ok)
	assert.Equal(t, 0, id)

	desc, ok := m.Col(FieldDescription)
	require.True(t, ok)
	assert.Equal(t, 1, desc)

	mobile, ok := m.Col(FieldMobile)
	require.True(t, ok)
	assert.Equal(t, 3, mobile)

	reporter, ok := m.Col(FieldReportedBy)
	require.True(t, ok)
	assert.Equal(t, 4, reporter)

	target, ok := m.Col(FieldTargetDate)
	require.True(t, ok)
	assert.Equal(t, 5, target)

	_, ok = m.Col(FieldRating)
	assert.False(t, ok)
}

func TestResolveHealsMissingColumns(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed("Tickets", [][]string{
		{"Ticket ID", "Description", "Status", "Created Date"},
		{"SBH00001", "Broken light", "Open", "2024-01-01T10:00:00Z"},
	})
	resolver := NewResolver(store)

	table, err := resolver.Resolve(context.Background(), "Tickets", []Field{FieldID, FieldStatus, FieldRating})
	require.NoError(t, err)

	col, ok := table.Columns.Col(FieldRating)
	require.True(t, ok)
	assert.Equal(t, 4, col)

	// The healed column is visible to the next resolution pass.
	rows, err := store.ReadAll(context.Background(), "Tickets")
	require.NoError(t, err)
	assert.Equal(t, "Rating", rows[0][4])
}

func TestResolveHealsHeaderBelowBannerRows(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed("Tickets", [][]string{
		{"Facility Helpdesk"},
		{"Ticket ID", "Description", "Status", "Created Date"},
		{"SBH00001", "Broken light", "Open", "2024-01-01T10:00:00Z"},
	})
	resolver := NewResolver(store)

	table, err := resolver.Resolve(context.Background(), "Tickets", []Field{FieldID, FieldRating})
	require.NoError(t, err)
	assert.Equal(t, 1, table.HeaderRow)

	rows, err := store.ReadAll(context.Background(), "Tickets")
	require.NoError(t, err)
	assert.Equal(t, "Rating", rows[1][4])
	// Banner row untouched.
	assert.Equal(t, []string{"Facility Helpdesk"}, rows[0])
}

func TestResolveBootstrapsEmptyTable(t *testing.T) {
	store := rowstore.NewMemoryStore()
	resolver := NewResolver(store)

	table, err := resolver.Resolve(context.Background(), "Tickets", []Field{FieldID, FieldStatus})
	require.NoError(t, err)

	_, ok := table.Columns.Col(FieldID)
	assert.True(t, ok)
	rows, err := store.ReadAll(context.Background(), "Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Ticket ID", "Status"}, rows[0])
}

func TestResolveFailsWhenIdentityUnresolvable(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed("Tickets", [][]string{
		{"Description", "Status", "Created At"},
		{"Broken light", "Open", "2024-01-01T10:00:00Z"},
	})
	resolver := NewResolver(store)

	_, err := resolver.Resolve(context.Background(), "Tickets", []Field{FieldID, FieldStatus})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "SCHEMA_UNRESOLVED"))

	domainErr := apperrors.ToDomainError(err)
	assert.Contains(t, domainErr.Details["headers"], "Description")
}

func TestTableGetToleratesShortRows(t *testing.T) {
	store := rowstore.NewMemoryStore()
	store.Seed("Tickets", [][]string{
		{"Ticket ID", "Description", "Status"},
		{"SBH00001", "Broken light"},
	})
	resolver := NewResolver(store)

	table, err := resolver.Resolve(context.Background(), "Tickets", []Field{FieldID})
	require.NoError(t, err)
	rows, _ := table.DataRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "", table.Get(rows[0], FieldStatus))
}
