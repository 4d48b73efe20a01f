package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/facility-helpdesk/internal/config"
	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/events"
	"github.com/spec-kit/facility-helpdesk/internal/notify"
	"github.com/spec-kit/facility-helpdesk/internal/observability"
	"github.com/spec-kit/facility-helpdesk/internal/repository"
)

// NotificationService renders message templates for domain events and fans
// them out through the sink. Delivery is best-effort: the mutation that
// produced the event is already committed, so sink failures are logged and
// dropped, never retried and never surfaced to the caller.
type NotificationService struct {
	dispatcher events.Dispatcher
	sink       notify.Sink
	staff      repository.StaffRepository
	contacts   repository.ContactRepository
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig
	loc        *time.Location
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sink notify.Sink, staff repository.StaffRepository, contacts repository.ContactRepository, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig, loc *time.Location) *NotificationService {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sink:       sink,
		staff:      staff,
		contacts:   contacts,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
		loc:        loc,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketExtended, n.handleTicketExtended)
	n.dispatcher.Subscribe(events.EventTicketForceClosed, n.handleTicketForceClosed)
	n.dispatcher.Subscribe(events.EventTicketReopened, n.handleTicketReopened)
	n.dispatcher.Subscribe(events.EventTicketRated, n.handleTicketRated)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleTicketEscalated)
}

// handleTicketCreated fans out to the department's active staff, every
// admin, and the reporter.
func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	var addresses []string
	members, err := n.staff.ListByDepartment(ctx, payload.Department)
	if err != nil {
		n.logger.Warn("staff lookup failed", zap.String("department", payload.Department), zap.Error(err))
	}
	for _, member := range members {
		addresses = append(addresses, member.Mobile)
	}
	admins, err := n.staff.ListAdmins(ctx)
	if err != nil {
		n.logger.Warn("admin lookup failed", zap.Error(err))
	}
	for _, admin := range admins {
		addresses = append(addresses, admin.Mobile)
	}
	if addr := n.addressFor(ctx, payload.ReportedBy); addr != "" {
		addresses = append(addresses, addr)
	}

	text := fmt.Sprintf("New ticket %s (%s): %s. Reported by %s at %s.",
		event.TicketID, payload.Department, payload.Description, payload.ReportedBy, n.stamp(event.Timestamp))
	n.sendAll(ctx, addresses, text)
	return nil
}

// handleTicketStatusChanged notifies the reporter on resolution or closure.
func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	if payload.NewStatus != domain.TicketStatusResolved && payload.NewStatus != domain.TicketStatusClosed {
		return nil
	}
	addr := n.addressFor(ctx, payload.ReportedBy)
	if addr == "" {
		return nil
	}
	text := fmt.Sprintf("Ticket %s is now %s as of %s.", event.TicketID, payload.NewStatus, n.stamp(event.Timestamp))
	n.sendAll(ctx, []string{addr}, text)
	return nil
}

func (n *NotificationService) handleTicketExtended(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketExtendedPayload)
	if !ok {
		return nil
	}
	addr := n.addressFor(ctx, payload.ReportedBy)
	if addr == "" {
		return nil
	}
	text := fmt.Sprintf("Ticket %s has been extended.", event.TicketID)
	if payload.TargetDate != nil {
		text = fmt.Sprintf("Ticket %s has been extended to %s.", event.TicketID, payload.TargetDate.In(n.loc).Format("2006-01-02"))
	}
	n.sendAll(ctx, []string{addr}, text)
	return nil
}

func (n *NotificationService) handleTicketForceClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketForceClosedPayload)
	if !ok {
		return nil
	}
	addr := n.addressFor(ctx, payload.ReportedBy)
	if addr == "" {
		return nil
	}
	text := fmt.Sprintf("Ticket %s was closed by management at %s.", event.TicketID, n.stamp(event.Timestamp))
	n.sendAll(ctx, []string{addr}, text)
	return nil
}

// handleTicketReopened alerts the original resolver directly and escalates
// to the L3 contact.
func (n *NotificationService) handleTicketReopened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketReopenedPayload)
	if !ok {
		return nil
	}
	var addresses []string
	if addr := n.addressFor(ctx, payload.ResolvedBy); addr != "" {
		addresses = append(addresses, addr)
	}
	if contact, err := n.contacts.Get(ctx, domain.EscalationL3); err == nil {
		addresses = append(addresses, contact.Mobile)
	} else {
		n.logger.Warn("escalation contact lookup failed", zap.Error(err))
	}
	text := fmt.Sprintf("Ticket %s has been RE-OPENED at %s. Original resolver: %s.",
		event.TicketID, n.stamp(event.Timestamp), payload.ResolvedBy)
	n.sendAll(ctx, addresses, text)
	return nil
}

// handleTicketRated is retained as a hook; rating alerts are disabled by
// deployment policy.
func (n *NotificationService) handleTicketRated(ctx context.Context, event events.Event) error {
	if !n.cfg.RatingAlertEnable {
		return nil
	}
	payload, ok := event.Payload.(events.TicketRatedPayload)
	if !ok {
		return nil
	}
	addr := n.addressFor(ctx, payload.Resolver)
	if addr == "" {
		return nil
	}
	text := fmt.Sprintf("Ticket %s received a rating of %d.", event.TicketID, payload.Rating)
	n.sendAll(ctx, []string{addr}, text)
	return nil
}

func (n *NotificationService) handleTicketEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketEscalatedPayload)
	if !ok {
		return nil
	}
	contact, err := n.contacts.Get(ctx, payload.Level)
	if err != nil {
		n.logger.Warn("escalation contact lookup failed",
			zap.String("level", string(payload.Level)), zap.Error(err))
		return nil
	}
	text := fmt.Sprintf("ESCALATION %s: ticket %s %s.", payload.Level, event.TicketID, payload.Reason)
	n.sendAll(ctx, []string{contact.Mobile}, text)
	return nil
}

// addressFor resolves a person's contact address through the staff
// directory. Reporters outside the directory are skipped.
func (n *NotificationService) addressFor(ctx context.Context, name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	member, err := n.staff.GetByName(ctx, name)
	if err != nil {
		n.logger.Warn("contact lookup failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	if member == nil {
		n.logger.Debug("no contact address on record", zap.String("name", name))
		return ""
	}
	return member.Mobile
}

// sendAll delivers one message to each distinct address, pacing sends to
// respect the sink's rate limits. Failures are counted and logged only.
func (n *NotificationService) sendAll(ctx context.Context, addresses []string, text string) {
	seen := make(map[string]struct{}, len(addresses))
	delay := time.Duration(n.cfg.InterSendDelayMS) * time.Millisecond
	first := true
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}

		if !first && delay > 0 {
			time.Sleep(delay)
		}
		first = false

		if err := n.sink.Send(ctx, addr, text); err != nil {
			n.metrics.RecordSinkFailure()
			n.logger.Warn("notification send failed",
				zap.String("to", addr), zap.Error(err))
		}
	}
}

func (n *NotificationService) stamp(t time.Time) string {
	return t.In(n.loc).Format(historyTimeLayout)
}
