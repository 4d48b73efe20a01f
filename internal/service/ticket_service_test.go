package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/events"
	"github.com/spec-kit/facility-helpdesk/internal/repository"
	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	apperrors "github.com/spec-kit/facility-helpdesk/pkg/util"
)

type serviceFixture struct {
	store     *rowstore.MemoryStore
	svc       *TicketService
	published []events.Event
	clock     time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		store: rowstore.NewMemoryStore(),
		clock: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketExtended,
		events.EventTicketForceClosed,
		events.EventTicketReopened,
		events.EventTicketRated,
		events.EventTicketEscalated,
	} {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			f.published = append(f.published, event)
			return nil
		})
	}
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo: repository.NewTicketRepository(f.store),
		RatingRepo: repository.NewRatingRepository(f.store),
		AuditRepo:  repository.NewAuditRepository(f.store),
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		IDPrefix:   "SBH",
		Location:   time.UTC,
		Now:        func() time.Time { return f.clock },
	})
	return f
}

func (f *serviceFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *serviceFixture) eventsOfType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range f.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func (f *serviceFixture) create(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), CreateInput{
		Department:  "Plumbing",
		Description: "tap leaking",
		ReportedBy:  "amy",
		Unit:        "Block B",
	})
	require.NoError(t, err)
	return ticket
}

func historyLines(ticket *domain.Ticket) []string {
	if ticket.History == "" {
		return nil
	}
	return strings.Split(ticket.History, "\n")
}

func TestCreateTicketAssignsSequentialIDs(t *testing.T) {
	f := newServiceFixture(t)

	first := f.create(t)
	second := f.create(t)
	third := f.create(t)

	assert.Equal(t, "SBH00001", first.ID)
	assert.Equal(t, "SBH00002", second.ID)
	assert.Equal(t, "SBH00003", third.ID)
	assert.Equal(t, domain.TicketStatusOpen, first.Status)
	require.Len(t, historyLines(first), 1)
	assert.Contains(t, first.History, "OPEN by amy")
	assert.Len(t, f.eventsOfType(events.EventTicketCreated), 3)

	trail, err := f.svc.ListAudit(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, domain.AuditAction("Open"), trail[0].Action)
	assert.Equal(t, "amy", trail[0].PerformedBy)
}

func TestCreateTicketRequiresCoreFields(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CreateTicket(context.Background(), CreateInput{
		Department: "Plumbing",
		ReportedBy: "amy",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCloseRecordsFirstResolverOnly(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	f.advance(2 * time.Hour)
	firstClose := f.clock
	closed, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusClosed, ActionBy: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", closed.ResolvedBy)
	require.NotNil(t, closed.ResolvedDate)
	assert.True(t, closed.ResolvedDate.Equal(firstClose))

	f.advance(time.Hour)
	_, err = f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusOpen, ActionBy: "amy"})
	require.NoError(t, err)

	f.advance(time.Hour)
	again, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusClosed, ActionBy: "carol"})
	require.NoError(t, err)
	assert.Equal(t, "bob", again.ResolvedBy, "resolver is assigned once")
	require.NotNil(t, again.ResolvedDate)
	assert.True(t, again.ResolvedDate.Equal(firstClose), "resolution date is assigned once")
}

func TestRatingIsWriteOnce(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusClosed, ActionBy: "bob"})
	require.NoError(t, err)

	five := 5
	rated, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Rating: &five, Remark: "quick fix", ActionBy: "amy"})
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)

	trailBefore, err := f.svc.ListAudit(ctx, ticket.ID)
	require.NoError(t, err)
	historyBefore := rated.History

	two := 2
	_, err = f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Rating: &two, ActionBy: "amy"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "ALREADY_RATED"))

	// The rejected attempt leaves no trace anywhere.
	current, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, current.Rating)
	assert.Equal(t, 5, *current.Rating)
	assert.Equal(t, historyBefore, current.History)
	trailAfter, err := f.svc.ListAudit(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, trailAfter, len(trailBefore))
}

func TestRatingConflictBlocksStatusChangeToo(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusClosed, ActionBy: "bob"})
	require.NoError(t, err)
	four := 4
	_, err = f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Rating: &four, ActionBy: "amy"})
	require.NoError(t, err)

	// A reopen bundled with a second rating must not go through either.
	one := 1
	_, err = f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusOpen, Rating: &one, ActionBy: "amy"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "ALREADY_RATED"))

	current, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, current.Status)
	assert.Nil(t, current.ReopenedDate)
}

func TestReopenKeepsRatingAndStampsReopenedDate(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusClosed, ActionBy: "bob"})
	require.NoError(t, err)
	three := 3
	_, err = f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Rating: &three, ActionBy: "amy"})
	require.NoError(t, err)

	f.advance(30 * time.Minute)
	reopenAt := f.clock
	reopened, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusOpen, Remark: "leak is back", ActionBy: "amy"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, reopened.Status)
	require.NotNil(t, reopened.ReopenedDate)
	assert.True(t, reopened.ReopenedDate.Equal(reopenAt))
	require.NotNil(t, reopened.Rating)
	assert.Equal(t, 3, *reopened.Rating)
	assert.Contains(t, reopened.History, "RE-OPEN by amy")

	reopenEvents := f.eventsOfType(events.EventTicketReopened)
	require.Len(t, reopenEvents, 1)
	payload, ok := reopenEvents[0].Payload.(events.TicketReopenedPayload)
	require.True(t, ok)
	assert.Equal(t, "bob", payload.ResolvedBy)
}

func TestNoopStatusChangeAddsNoHistoryLine(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	updated, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusOpen, Remark: "still waiting", ActionBy: "amy"})
	require.NoError(t, err)

	require.Len(t, historyLines(updated), 1, "only the creation line")
	assert.Equal(t, "still waiting", updated.Remark)
	assert.Empty(t, f.eventsOfType(events.EventTicketStatusChanged))

	// The trail still records the accepted request.
	trail, err := f.svc.ListAudit(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 2)
}

func TestIntermediateStatusSkipsHistory(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	updated, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusPending, ActionBy: "bob"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusPending, updated.Status)
	require.Len(t, historyLines(updated), 1, "Pending writes no history line")
	assert.Len(t, f.eventsOfType(events.EventTicketStatusChanged), 1)
}

func TestExtendAlwaysWritesHistory(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	// Without a target date the extension is still recorded.
	noDate, err := f.svc.Extend(ctx, ExtendInput{ID: ticket.ID, ActionBy: "bob"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, noDate.Status)
	assert.Nil(t, noDate.TargetDate)
	assert.Contains(t, noDate.History, "EXTENSION by bob (no target date supplied)")

	target := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	withDate, err := f.svc.Extend(ctx, ExtendInput{ID: ticket.ID, TargetDate: &target, Remark: "parts on order", ActionBy: "bob"})
	require.NoError(t, err)
	require.NotNil(t, withDate.TargetDate)
	assert.True(t, withDate.TargetDate.Equal(target))
	assert.Contains(t, withDate.History, "target date 2026-03-15, parts on order")
	assert.Equal(t, "parts on order", withDate.Remark)

	trail, err := f.svc.ListAudit(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, domain.ActionExtension, trail[1].Action)
	assert.Equal(t, domain.ActionExtension, trail[2].Action)
	assert.Len(t, f.eventsOfType(events.EventTicketExtended), 2)
}

func TestForceCloseAlwaysLogsAndKeepsFirstResolvedDate(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	firstClose := f.clock
	_, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusClosed, ActionBy: "bob"})
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: domain.TicketStatusOpen, ActionBy: "amy"})
	require.NoError(t, err)

	f.advance(48 * time.Hour)
	forced, err := f.svc.ForceClose(ctx, ForceCloseInput{ID: ticket.ID, Remark: "stale", ActionBy: "root"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusClosed, forced.Status)
	assert.Contains(t, forced.History, "FORCE CLOSED by root (stale)")
	require.NotNil(t, forced.ResolvedDate)
	assert.True(t, forced.ResolvedDate.Equal(firstClose))
	assert.Equal(t, "bob", forced.ResolvedBy)
	assert.Len(t, f.eventsOfType(events.EventTicketForceClosed), 1)

	// Forcing an already closed ticket still appends a line.
	forcedAgain, err := f.svc.ForceClose(ctx, ForceCloseInput{ID: ticket.ID, ActionBy: "root"})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(forcedAgain.History, "FORCE CLOSED by root"))
}

func TestRatingHealsLegacyStoreWithoutRatingColumn(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	// A store predating the rating feature: no Rating column at all.
	f.store.Seed(repository.TicketTable, [][]string{
		{"Ticket ID", "Department", "Description", "Status", "Reported By", "Resolved By", "Remark", "History", "Target Date", "Resolved Date", "Reopened Date", "Unit", "Created At"},
		{"SBH00001", "Electrical", "fan broken", "Closed", "amy", "bob", "", "", "", "", "", "B2", ""},
	})

	five := 5
	rated, err := f.svc.SetStatus(ctx, SetStatusInput{ID: "SBH00001", Rating: &five, ActionBy: "amy"})
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)

	rows, err := f.store.ReadAll(ctx, repository.TicketTable)
	require.NoError(t, err)
	assert.Contains(t, rows[0], "Rating")

	reread, err := f.svc.GetTicket(ctx, "SBH00001")
	require.NoError(t, err)
	require.NotNil(t, reread.Rating)
	assert.Equal(t, 5, *reread.Rating)
}

func TestRatingAttributionFallsBackToActor(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	// Rated while still open: no resolver recorded yet.
	four := 4
	_, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Rating: &four, ActionBy: "amy"})
	require.NoError(t, err)

	ratedEvents := f.eventsOfType(events.EventTicketRated)
	require.Len(t, ratedEvents, 1)
	payload, ok := ratedEvents[0].Payload.(events.TicketRatedPayload)
	require.True(t, ok)
	assert.Equal(t, "amy", payload.Resolver)
}

func TestRatingOutOfRangeRejected(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	for _, bad := range []int{-1, 0, 6, 17} {
		bad := bad
		_, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Rating: &bad, ActionBy: "amy"})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	}

	current, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, current.Rating)

	// The ledger stays open for a valid rating afterwards.
	five := 5
	rated, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Rating: &five, ActionBy: "amy"})
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)
}

func TestUnknownStatusRejected(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Status: "Banana", ActionBy: "bob"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	current, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, current.Status)
	require.Len(t, historyLines(current), 1)

	trail, err := f.svc.ListAudit(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 1, "rejected request leaves no trail entry")
}

type failingRatingRepo struct {
	repository.RatingRepository
	appendErr error
}

func (f *failingRatingRepo) Append(ctx context.Context, record *domain.RatingRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.RatingRepository.Append(ctx, record)
}

func TestRatingLedgerWriteFailureLeavesTicketUnrated(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.create(t)
	ctx := context.Background()

	svc := NewTicketService(TicketDependencies{
		TicketRepo: repository.NewTicketRepository(f.store),
		RatingRepo: &failingRatingRepo{
			RatingRepository: repository.NewRatingRepository(f.store),
			appendErr:        errors.New("ledger write refused"),
		},
		AuditRepo: repository.NewAuditRepository(f.store),
		Logger:    zap.NewNop(),
		IDPrefix:  "SBH",
		Location:  time.UTC,
	})

	five := 5
	_, err := svc.SetStatus(ctx, SetStatusInput{ID: ticket.ID, Rating: &five, ActionBy: "amy"})
	require.Error(t, err)

	// The ledger row goes in first, so the failed request never persisted a
	// rating on the ticket itself.
	current, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, current.Rating)
}

func TestSetStatusUnknownTicket(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.SetStatus(context.Background(), SetStatusInput{ID: "SBH09999", Status: domain.TicketStatusClosed, ActionBy: "bob"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
