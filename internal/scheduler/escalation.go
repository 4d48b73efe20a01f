// Package scheduler implements the polling escalation scan over stale
// tickets. Alerts are re-sent on every scan while their condition holds;
// this is an at-least-once policy with no persisted dedupe state.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/facility-helpdesk/internal/config"
	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/events"
	"github.com/spec-kit/facility-helpdesk/internal/observability"
	"github.com/spec-kit/facility-helpdesk/internal/repository"
)

// Scanner walks the ticket table and raises tiered escalation events.
type Scanner struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.EscalationConfig
	now        func() time.Time
}

// NewScanner constructs the scanner.
func NewScanner(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.EscalationConfig, now func() time.Time) *Scanner {
	if now == nil {
		now = time.Now
	}
	if cfg.Tier1Hours <= 0 {
		cfg.Tier1Hours = 24
	}
	if cfg.Tier2Hours <= 0 {
		cfg.Tier2Hours = 4
	}
	return &Scanner{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
		now:        now,
	}
}

// ScanAndEscalate runs one pass. Re-opened tickets are tiered on hours since
// the re-open; unfinished tickets past their target date are bumped on whole
// overdue days. Both checks are threshold crossings, so a missed tick never
// silently skips an alert.
func (s *Scanner) ScanAndEscalate(ctx context.Context) error {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return err
	}
	now := s.now()

	for i := range tickets {
		ticket := &tickets[i]
		s.checkReopened(ctx, ticket, now)
		s.checkOverdue(ctx, ticket, now)
	}
	s.metrics.RecordEscalationScan()
	return nil
}

func (s *Scanner) checkReopened(ctx context.Context, ticket *domain.Ticket, now time.Time) {
	if ticket.Status != domain.TicketStatusOpen || ticket.ReopenedDate == nil {
		return
	}
	elapsed := int(now.Sub(*ticket.ReopenedDate).Hours())
	if elapsed < 0 {
		return
	}
	var level domain.EscalationLevel
	switch {
	case elapsed >= s.cfg.Tier1Hours:
		level = domain.EscalationL1
	case elapsed >= s.cfg.Tier2Hours:
		level = domain.EscalationL2
	default:
		return
	}
	s.publish(ctx, ticket.ID, events.TicketEscalatedPayload{
		Level:        level,
		Reason:       fmt.Sprintf("re-opened %dh ago and still unresolved", elapsed),
		ElapsedHours: elapsed,
	})
}

func (s *Scanner) checkOverdue(ctx context.Context, ticket *domain.Ticket, now time.Time) {
	if ticket.IsClosed() || ticket.TargetDate == nil {
		return
	}
	overdueDays := int(now.Sub(*ticket.TargetDate).Hours() / 24)
	if overdueDays <= 0 {
		return
	}
	var level domain.EscalationLevel
	switch {
	case len(s.cfg.OverdueBumpDays) > 1 && overdueDays >= s.cfg.OverdueBumpDays[1]:
		level = domain.EscalationL3
	case len(s.cfg.OverdueBumpDays) > 0 && overdueDays >= s.cfg.OverdueBumpDays[0]:
		level = domain.EscalationL2
	default:
		return
	}
	s.publish(ctx, ticket.ID, events.TicketEscalatedPayload{
		Level:       level,
		Reason:      fmt.Sprintf("%d days past its target date", overdueDays),
		OverdueDays: overdueDays,
	})
}

func (s *Scanner) publish(ctx context.Context, ticketID string, payload events.TicketEscalatedPayload) {
	s.logger.Info("escalation raised",
		zap.String("ticket_id", ticketID),
		zap.String("level", string(payload.Level)),
		zap.String("reason", payload.Reason))
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventTicketEscalated,
		TicketID:  ticketID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
