package rowstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.AppendRow(ctx, "Tickets", []string{"Ticket ID", "Status"}))
	require.NoError(t, store.AppendRow(ctx, "Tickets", []string{"SBH00001", "Open"}))

	rows, err := store.ReadAll(ctx, "Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"SBH00001", "Open"}, rows[1])
}

func TestMemoryStoreSetCellExtendsShortRow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Seed("Tickets", [][]string{
		{"Ticket ID", "Status", "Rating"},
		{"SBH00001", "Open"},
	})

	require.NoError(t, store.SetCell(ctx, "Tickets", 1, 2, "5"))
	rows, err := store.ReadAll(ctx, "Tickets")
	require.NoError(t, err)
	assert.Equal(t, []string{"SBH00001", "Open", "5"}, rows[1])
}

func TestMemoryStoreSetCellOutOfRange(t *testing.T) {
	store := NewMemoryStore()
	err := store.SetCell(context.Background(), "Tickets", 3, 0, "x")
	assert.Error(t, err)
}

func TestMemoryStoreCreateColumn(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// On an empty table the column becomes the header row.
	require.NoError(t, store.CreateColumn(ctx, "Tickets", "Ticket ID"))
	require.NoError(t, store.CreateColumn(ctx, "Tickets", "Rating"))

	rows, err := store.ReadAll(ctx, "Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Ticket ID", "Rating"}, rows[0])
}

func TestMemoryStoreReadReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Seed("Tickets", [][]string{{"Ticket ID"}, {"SBH00001"}})

	rows, err := store.ReadAll(ctx, "Tickets")
	require.NoError(t, err)
	rows[1][0] = "mutated"

	again, err := store.ReadAll(ctx, "Tickets")
	require.NoError(t, err)
	assert.Equal(t, "SBH00001", again[1][0])
}
