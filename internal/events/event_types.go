package events

import (
	"time"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketExtended      EventType = "ticket_extended"
	EventTicketForceClosed   EventType = "ticket_force_closed"
	EventTicketReopened      EventType = "ticket_reopened"
	EventTicketRated         EventType = "ticket_rated"
	EventTicketEscalated     EventType = "ticket_escalated"
)

// Event represents a domain event emitted after a committed mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorName string      `json:"actor_name"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Department  string `json:"department"`
	Description string `json:"description"`
	ReportedBy  string `json:"reported_by"`
	Unit        string `json:"unit,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	ReportedBy string              `json:"reported_by"`
	Remark     string              `json:"remark,omitempty"`
}

// TicketExtendedPayload payload.
type TicketExtendedPayload struct {
	TargetDate *time.Time `json:"target_date,omitempty"`
	ReportedBy string     `json:"reported_by"`
	Remark     string     `json:"remark,omitempty"`
}

// TicketForceClosedPayload payload.
type TicketForceClosedPayload struct {
	OldStatus  domain.TicketStatus `json:"old_status"`
	ReportedBy string              `json:"reported_by"`
	Remark     string              `json:"remark,omitempty"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	ResolvedBy string `json:"resolved_by"`
	ReportedBy string `json:"reported_by"`
	Remark     string `json:"remark,omitempty"`
}

// TicketRatedPayload payload.
type TicketRatedPayload struct {
	Rating   int    `json:"rating"`
	Resolver string `json:"resolver"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Level        domain.EscalationLevel `json:"level"`
	Reason       string                 `json:"reason"`
	ElapsedHours int                    `json:"elapsed_hours,omitempty"`
	OverdueDays  int                    `json:"overdue_days,omitempty"`
}
