package domain

import "time"

// TicketStatus enumerates lifecycle states for facility tickets.
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "Open"
	TicketStatusPending     TicketStatus = "Pending"
	TicketStatusExtended    TicketStatus = "Extended"
	TicketStatusResolved    TicketStatus = "Resolved"
	TicketStatusClosed      TicketStatus = "Closed"
	TicketStatusTransferred TicketStatus = "Transferred"
)

// Known reports whether s is one of the lifecycle states.
func (s TicketStatus) Known() bool {
	switch s {
	case TicketStatusOpen, TicketStatusPending, TicketStatusExtended,
		TicketStatusResolved, TicketStatusClosed, TicketStatusTransferred:
		return true
	}
	return false
}

// Ticket is the aggregate for facility-support requests. Nullable columns are
// pointer-typed; empty cells in the row store decode to nil.
type Ticket struct {
	ID           string
	Department   string
	Description  string
	Status       TicketStatus
	ReportedBy   string
	ResolvedBy   string
	Remark       string
	History      string
	TargetDate   *time.Time
	ResolvedDate *time.Time
	ReopenedDate *time.Time
	Rating       *int
	Unit         string
	CreatedAt    *time.Time
}

// IsClosed reports whether the ticket currently sits in the closed state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}
