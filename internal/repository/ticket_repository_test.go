package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	apperrors "github.com/spec-kit/facility-helpdesk/pkg/util"
)

var ticketHeaders = []string{
	"Ticket ID", "Department", "Description", "Status", "Reported By",
	"Resolved By", "Remark", "History", "Target Date", "Resolved Date",
	"Reopened Date", "Rating", "Unit", "Created At",
}

func seededTicketStore(t *testing.T, rows ...[]string) *rowstore.MemoryStore {
	t.Helper()
	store := rowstore.NewMemoryStore()
	all := append([][]string{ticketHeaders}, rows...)
	store.Seed(TicketTable, all)
	return store
}

func TestNextIDStartsAtOne(t *testing.T) {
	repo := NewTicketRepository(seededTicketStore(t))

	id, err := repo.NextID(context.Background(), "SBH")
	require.NoError(t, err)
	assert.Equal(t, "SBH00001", id)
}

func TestNextIDSkipsForeignAndMalformedIDs(t *testing.T) {
	store := seededTicketStore(t,
		[]string{"SBH00007", "Plumbing", "leak", "Open", "amy", "", "", "", "", "", "", "", "B1", ""},
		[]string{"XYZ00099", "Plumbing", "other", "Open", "amy", "", "", "", "", "", "", "", "B1", ""},
		[]string{"SBHdraft", "Plumbing", "bad id", "Open", "amy", "", "", "", "", "", "", "", "B1", ""},
	)
	repo := NewTicketRepository(store)

	id, err := repo.NextID(context.Background(), "SBH")
	require.NoError(t, err)
	assert.Equal(t, "SBH00008", id)
}

func TestInsertGetByIDRoundtrip(t *testing.T) {
	repo := NewTicketRepository(seededTicketStore(t))
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	target := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rating := 4
	in := &domain.Ticket{
		ID:          "SBH00001",
		Department:  "Electrical",
		Description: "corridor light flickering",
		Status:      domain.TicketStatusOpen,
		ReportedBy:  "amy",
		History:     "2026-03-01 15:00:00 - OPEN by amy",
		TargetDate:  &target,
		Rating:      &rating,
		Unit:        "Block C",
		CreatedAt:   &created,
	}
	require.NoError(t, repo.Insert(ctx, in))

	got, err := repo.GetByID(ctx, "SBH00001")
	require.NoError(t, err)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, domain.TicketStatusOpen, got.Status)
	require.NotNil(t, got.TargetDate)
	assert.True(t, got.TargetDate.Equal(target))
	require.NotNil(t, got.CreatedAt)
	assert.True(t, got.CreatedAt.Equal(created))
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4, *got.Rating)
	assert.Nil(t, got.ResolvedDate)
	assert.Nil(t, got.ReopenedDate)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewTicketRepository(seededTicketStore(t))

	_, err := repo.GetByID(context.Background(), "SBH09999")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestUpdateRewritesChangedCells(t *testing.T) {
	store := seededTicketStore(t,
		[]string{"SBH00001", "Plumbing", "leak", "Open", "amy", "", "", "", "", "", "", "", "B1", ""},
		[]string{"SBH00002", "Plumbing", "drip", "Open", "amy", "", "", "", "", "", "", "", "B1", ""},
	)
	repo := NewTicketRepository(store)
	ctx := context.Background()

	ticket, err := repo.GetByID(ctx, "SBH00002")
	require.NoError(t, err)
	resolved := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	ticket.Status = domain.TicketStatusClosed
	ticket.ResolvedBy = "bob"
	ticket.ResolvedDate = &resolved
	require.NoError(t, repo.Update(ctx, ticket))

	got, err := repo.GetByID(ctx, "SBH00002")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	assert.Equal(t, "bob", got.ResolvedBy)
	require.NotNil(t, got.ResolvedDate)
	assert.True(t, got.ResolvedDate.Equal(resolved))

	// The sibling row is untouched.
	other, err := repo.GetByID(ctx, "SBH00001")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, other.Status)
}

func TestUpdateUnknownTicket(t *testing.T) {
	repo := NewTicketRepository(seededTicketStore(t))

	err := repo.Update(context.Background(), &domain.Ticket{ID: "SBH00042"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestListAllSkipsBlankIdentifierRows(t *testing.T) {
	store := seededTicketStore(t,
		[]string{"SBH00001", "Plumbing", "leak", "Open", "amy", "", "", "", "", "", "", "", "B1", ""},
		[]string{"", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		[]string{"SBH00002", "Plumbing", "drip", "Closed", "amy", "bob", "", "", "", "", "", "", "B1", ""},
	)
	repo := NewTicketRepository(store)

	tickets, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "SBH00001", tickets[0].ID)
	assert.Equal(t, "SBH00002", tickets[1].ID)
}
