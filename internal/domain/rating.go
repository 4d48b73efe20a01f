package domain

import "time"

// RatingRecord is an append-only ledger row recording the one allowed rating
// for a ticket. Records are never updated or deleted.
type RatingRecord struct {
	TicketID string
	Rating   int
	Remark   string
	Resolver string
	Reporter string
	Date     time.Time
}
