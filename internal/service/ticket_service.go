package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/events"
	"github.com/spec-kit/facility-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/facility-helpdesk/pkg/util"
)

// historyTimeLayout renders timestamps inside History lines, in the
// deployment's fixed-offset local time.
const historyTimeLayout = "2006-01-02 15:04:05"

// TicketService is the ticket state machine. It validates transitions,
// applies side effects and keeps the write-once invariants. The row store
// offers no transactions, so every mutation re-reads the ticket and runs
// under a per-identifier lock.
type TicketService struct {
	tickets    repository.TicketRepository
	ratings    repository.RatingRepository
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	prefix string
	loc    *time.Location
	now    func() time.Time

	createMu sync.Mutex
	locks    ticketLocks
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	RatingRepo repository.RatingRepository
	AuditRepo  repository.AuditRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger

	IDPrefix string
	Location *time.Location
	Now      func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		ratings:    deps.RatingRepo,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		prefix:     deps.IDPrefix,
		loc:        deps.Location,
		now:        deps.Now,
	}
	if svc.prefix == "" {
		svc.prefix = "SBH"
	}
	if svc.loc == nil {
		svc.loc = time.UTC
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// CreateInput describes ticket creation payload.
type CreateInput struct {
	Department  string
	Description string
	ReportedBy  string
	Unit        string
}

// SetStatusInput describes the general transition payload. Status may be
// empty for rating-only requests.
type SetStatusInput struct {
	ID       string
	Status   domain.TicketStatus
	Remark   string
	Rating   *int
	ActionBy string
}

// ExtendInput describes the extension payload.
type ExtendInput struct {
	ID         string
	TargetDate *time.Time
	Remark     string
	ActionBy   string
}

// ForceCloseInput describes the admin-only forced closure payload.
type ForceCloseInput struct {
	ID       string
	Remark   string
	ActionBy string
}

// CreateTicket registers a new ticket in the Open state and assigns the next
// sequential identifier. Identifier assignment scans existing IDs, so
// creations are serialized.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Department) == "" || strings.TrimSpace(input.Description) == "" || strings.TrimSpace(input.ReportedBy) == "" {
		return nil, apperrors.NewValidationError("department, description and reportedBy are required", nil)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	id, err := s.tickets.NextID(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:          id,
		Department:  strings.TrimSpace(input.Department),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		ReportedBy:  strings.TrimSpace(input.ReportedBy),
		Unit:        strings.TrimSpace(input.Unit),
		CreatedAt:   &now,
	}
	s.appendHistory(ticket, now, "OPEN", ticket.ReportedBy, "")

	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, &domain.AuditEntry{
		Date:        now,
		TicketID:    ticket.ID,
		Action:      domain.AuditAction(domain.TicketStatusOpen),
		PerformedBy: ticket.ReportedBy,
		NewStatus:   domain.TicketStatusOpen,
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		ActorName: ticket.ReportedBy,
		Payload: events.TicketCreatedPayload{
			Department:  ticket.Department,
			Description: ticket.Description,
			ReportedBy:  ticket.ReportedBy,
			Unit:        ticket.Unit,
		},
	})
	return ticket, nil
}

// SetStatus is the general transition path. Rating conflicts abort the whole
// request before any field is written, keeping the write-once rating
// guarantee atomic in effect even without store transactions.
func (s *TicketService) SetStatus(ctx context.Context, input SetStatusInput) (*domain.Ticket, error) {
	if input.Status != "" && !input.Status.Known() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(input.Status)})
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": *input.Rating})
	}

	unlock := s.locks.lock(input.ID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	newStatus := input.Status
	if newStatus == "" {
		newStatus = oldStatus
	}

	if input.Rating != nil {
		rated, err := s.ratings.Exists(ctx, ticket.ID)
		if err != nil {
			return nil, err
		}
		if rated {
			return nil, apperrors.NewAlreadyRated(ticket.ID)
		}
	}

	now := s.now()

	// First responder wins; later closures never reassign.
	if ticket.ResolvedBy == "" && (newStatus == domain.TicketStatusClosed || newStatus == domain.TicketStatusResolved) {
		ticket.ResolvedBy = strings.TrimSpace(input.ActionBy)
	}

	reopened := newStatus == domain.TicketStatusOpen && oldStatus == domain.TicketStatusClosed

	// History text only for real transitions into Open or Closed; a rating
	// attached to a no-op status change adds no line.
	if newStatus != oldStatus && (newStatus == domain.TicketStatusOpen || newStatus == domain.TicketStatusClosed) {
		label := strings.ToUpper(string(newStatus))
		if reopened {
			label = "RE-OPEN"
		}
		s.appendHistory(ticket, now, label, input.ActionBy, input.Remark)
	}

	var ratingRecord *domain.RatingRecord
	if input.Rating != nil {
		ticket.Rating = input.Rating
		resolver := ticket.ResolvedBy
		if resolver == "" {
			resolver = strings.TrimSpace(input.ActionBy)
		}
		ratingRecord = &domain.RatingRecord{
			TicketID: ticket.ID,
			Rating:   *input.Rating,
			Remark:   input.Remark,
			Resolver: resolver,
			Reporter: ticket.ReportedBy,
			Date:     now,
		}
	}

	if newStatus == domain.TicketStatusClosed && ticket.ResolvedDate == nil {
		ticket.ResolvedDate = &now
	}
	if reopened {
		// Overwritten on every re-open; the scheduler keys off it.
		// A previously recorded rating survives.
		ticket.ReopenedDate = &now
	}
	if strings.TrimSpace(input.Remark) != "" {
		ticket.Remark = strings.TrimSpace(input.Remark)
	}
	ticket.Status = newStatus

	// Ledger row first: it is the authority for the write-once check, so a
	// partial failure must read as rated, never as silently unrated.
	if ratingRecord != nil {
		if err := s.ratings.Append(ctx, ratingRecord); err != nil {
			return nil, err
		}
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, &domain.AuditEntry{
		Date:        now,
		TicketID:    ticket.ID,
		Action:      domain.AuditAction(newStatus),
		PerformedBy: input.ActionBy,
		Remark:      input.Remark,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		Rating:      input.Rating,
	})

	if newStatus != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketStatusChanged,
			TicketID:  ticket.ID,
			ActorName: input.ActionBy,
			Payload: events.TicketStatusChangedPayload{
				OldStatus:  oldStatus,
				NewStatus:  newStatus,
				ReportedBy: ticket.ReportedBy,
				Remark:     input.Remark,
			},
		})
	}
	if reopened {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketReopened,
			TicketID:  ticket.ID,
			ActorName: input.ActionBy,
			Payload: events.TicketReopenedPayload{
				ResolvedBy: ticket.ResolvedBy,
				ReportedBy: ticket.ReportedBy,
				Remark:     input.Remark,
			},
		})
	}
	if ratingRecord != nil {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketRated,
			TicketID:  ticket.ID,
			ActorName: input.ActionBy,
			Payload: events.TicketRatedPayload{
				Rating:   ratingRecord.Rating,
				Resolver: ratingRecord.Resolver,
			},
		})
	}
	return ticket, nil
}

// Extend records a deadline extension. The status never changes and a
// history line is always written, noting explicitly when no target date was
// supplied.
func (s *TicketService) Extend(ctx context.Context, input ExtendInput) (*domain.Ticket, error) {
	unlock := s.locks.lock(input.ID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	detail := "no target date supplied"
	if input.TargetDate != nil {
		ticket.TargetDate = input.TargetDate
		detail = "target date " + input.TargetDate.In(s.loc).Format("2006-01-02")
	}
	remark := strings.TrimSpace(input.Remark)
	if remark != "" {
		ticket.Remark = remark
		detail += ", " + remark
	}
	s.appendHistory(ticket, now, "EXTENSION", input.ActionBy, detail)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, &domain.AuditEntry{
		Date:        now,
		TicketID:    ticket.ID,
		Action:      domain.ActionExtension,
		PerformedBy: input.ActionBy,
		Remark:      input.Remark,
		OldStatus:   ticket.Status,
		NewStatus:   ticket.Status,
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketExtended,
		TicketID:  ticket.ID,
		ActorName: input.ActionBy,
		Payload: events.TicketExtendedPayload{
			TargetDate: ticket.TargetDate,
			ReportedBy: ticket.ReportedBy,
			Remark:     input.Remark,
		},
	})
	return ticket, nil
}

// ForceClose closes a ticket unconditionally. Admin-only at the transport
// boundary. The history line is written even when the ticket was already
// closed, and the rating and re-open branches do not run.
func (s *TicketService) ForceClose(ctx context.Context, input ForceCloseInput) (*domain.Ticket, error) {
	unlock := s.locks.lock(input.ID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	if ticket.ResolvedDate == nil {
		ticket.ResolvedDate = &now
	}
	remark := strings.TrimSpace(input.Remark)
	if remark != "" {
		ticket.Remark = remark
	}
	s.appendHistory(ticket, now, "FORCE CLOSED", input.ActionBy, remark)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, &domain.AuditEntry{
		Date:        now,
		TicketID:    ticket.ID,
		Action:      domain.AuditAction(domain.TicketStatusClosed),
		PerformedBy: input.ActionBy,
		Remark:      input.Remark,
		OldStatus:   oldStatus,
		NewStatus:   domain.TicketStatusClosed,
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketForceClosed,
		TicketID:  ticket.ID,
		ActorName: input.ActionBy,
		Payload: events.TicketForceClosedPayload{
			OldStatus:  oldStatus,
			ReportedBy: ticket.ReportedBy,
			Remark:     input.Remark,
		},
	})
	return ticket, nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ListTickets returns every ticket.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.ListAll(ctx)
}

// ListAudit returns the audit trail for one ticket.
func (s *TicketService) ListAudit(ctx context.Context, ticketID string) ([]domain.AuditEntry, error) {
	return s.audit.ListByTicket(ctx, ticketID)
}

func (s *TicketService) appendHistory(ticket *domain.Ticket, at time.Time, label, actor, detail string) {
	line := fmt.Sprintf("%s - %s by %s", at.In(s.loc).Format(historyTimeLayout), label, strings.TrimSpace(actor))
	if strings.TrimSpace(detail) != "" {
		line += " (" + strings.TrimSpace(detail) + ")"
	}
	if ticket.History == "" {
		ticket.History = line
		return
	}
	ticket.History += "\n" + line
}

// appendAudit records the trail entry. The mutation is already committed, so
// a trail failure is logged rather than surfaced.
func (s *TicketService) appendAudit(ctx context.Context, entry *domain.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("audit append failed",
			zap.String("ticket_id", entry.TicketID),
			zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// ticketLocks serializes mutations per ticket identifier.
type ticketLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *ticketLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	entry, ok := l.locks[id]
	if !ok {
		entry = &sync.Mutex{}
		l.locks[id] = entry
	}
	l.mu.Unlock()

	entry.Lock()
	return entry.Unlock
}
