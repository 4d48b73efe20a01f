package domain

import "time"

// AuditAction labels what an audit entry records. Status transitions use the
// new status as the action; extensions use ActionExtension.
type AuditAction string

const ActionExtension AuditAction = "Extension"

// AuditEntry is an immutable trail entry, one per accepted transition,
// independent of the ticket's own History text.
type AuditEntry struct {
	Date        time.Time
	TicketID    string
	Action      AuditAction
	PerformedBy string
	Remark      string
	OldStatus   TicketStatus
	NewStatus   TicketStatus
	Rating      *int
}
