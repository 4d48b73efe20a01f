package dto

import (
	"time"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
)

// ActionRequest is the action-discriminated engine request: an `action`
// selector plus a flat field payload.
type ActionRequest struct {
	Action      string `json:"action"`
	ID          string `json:"id"`
	Department  string `json:"department"`
	Description string `json:"description"`
	ReportedBy  string `json:"reportedBy"`
	Unit        string `json:"unit"`
	Status      string `json:"status"`
	Remark      string `json:"remark"`
	Rating      *int   `json:"rating"`
	ActionBy    string `json:"actionBy"`
	TargetDate  string `json:"targetDate"`
	Extend      bool   `json:"extend"`
}

// Envelope is the uniform response shape.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success wraps data in a success envelope.
func Success(message string, data any) Envelope {
	return Envelope{Status: "success", Message: message, Data: data}
}

// LoginRequest payload.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse payload.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID           string     `json:"id"`
	Department   string     `json:"department"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	ReportedBy   string     `json:"reported_by"`
	ResolvedBy   string     `json:"resolved_by,omitempty"`
	Remark       string     `json:"remark,omitempty"`
	History      string     `json:"history,omitempty"`
	TargetDate   *time.Time `json:"target_date,omitempty"`
	ResolvedDate *time.Time `json:"resolved_date,omitempty"`
	ReopenedDate *time.Time `json:"reopened_date,omitempty"`
	Rating       *int       `json:"rating,omitempty"`
	Unit         string     `json:"unit,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// FromTicket maps a domain ticket to its response shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Department:   t.Department,
		Description:  t.Description,
		Status:       string(t.Status),
		ReportedBy:   t.ReportedBy,
		ResolvedBy:   t.ResolvedBy,
		Remark:       t.Remark,
		History:      t.History,
		TargetDate:   t.TargetDate,
		ResolvedDate: t.ResolvedDate,
		ReopenedDate: t.ReopenedDate,
		Rating:       t.Rating,
		Unit:         t.Unit,
		CreatedAt:    t.CreatedAt,
	}
}

// AuditEntryResponse is one audit trail row.
type AuditEntryResponse struct {
	Date        time.Time `json:"date"`
	TicketID    string    `json:"ticket_id"`
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"`
	Remark      string    `json:"remark,omitempty"`
	OldStatus   string    `json:"old_status,omitempty"`
	NewStatus   string    `json:"new_status"`
	Rating      *int      `json:"rating,omitempty"`
}

// FromAuditEntry maps a domain audit entry.
func FromAuditEntry(e domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		Date:        e.Date,
		TicketID:    e.TicketID,
		Action:      string(e.Action),
		PerformedBy: e.PerformedBy,
		Remark:      e.Remark,
		OldStatus:   string(e.OldStatus),
		NewStatus:   string(e.NewStatus),
		Rating:      e.Rating,
	}
}

// ContactResponse is one escalation contact.
type ContactResponse struct {
	Level  string `json:"level"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}
