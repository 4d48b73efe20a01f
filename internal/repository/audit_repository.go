package repository

import (
	"context"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	"github.com/spec-kit/facility-helpdesk/internal/schema"
)

// AuditTable is the backing table name for the audit ledger.
const AuditTable = "AuditTrail"

var auditFields = []schema.Field{
	schema.FieldDate,
	schema.FieldID,
	schema.FieldAction,
	schema.FieldPerformedBy,
	schema.FieldRemark,
	schema.FieldOldStatus,
	schema.FieldNewStatus,
	schema.FieldRating,
}

// AuditRepository is the append-only transition trail, independent of the
// ticket's own History text.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	resolver *schema.Resolver
	store    rowstore.Store
}

// NewAuditRepository instantiates the ledger.
func NewAuditRepository(store rowstore.Store) AuditRepository {
	return &auditRepository{resolver: schema.NewResolver(store), store: store}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	table, err := r.resolver.Resolve(ctx, AuditTable, auditFields)
	if err != nil {
		return err
	}
	row := make([]string, len(table.Headers))
	set := func(f schema.Field, value string) {
		if col, ok := table.Columns.Col(f); ok && col < len(row) {
			row[col] = value
		}
	}
	set(schema.FieldDate, encodeTime(&entry.Date))
	set(schema.FieldID, entry.TicketID)
	set(schema.FieldAction, string(entry.Action))
	set(schema.FieldPerformedBy, entry.PerformedBy)
	set(schema.FieldRemark, entry.Remark)
	set(schema.FieldOldStatus, string(entry.OldStatus))
	set(schema.FieldNewStatus, string(entry.NewStatus))
	set(schema.FieldRating, encodeRating(entry.Rating))
	return r.store.AppendRow(ctx, AuditTable, row)
}

func (r *auditRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditEntry, error) {
	table, err := r.resolver.Resolve(ctx, AuditTable, auditFields)
	if err != nil {
		return nil, err
	}
	rows, _ := table.DataRows()
	var entries []domain.AuditEntry
	for _, row := range rows {
		if table.Get(row, schema.FieldID) != ticketID {
			continue
		}
		entry := domain.AuditEntry{
			TicketID:    ticketID,
			Action:      domain.AuditAction(table.Get(row, schema.FieldAction)),
			PerformedBy: table.Get(row, schema.FieldPerformedBy),
			Remark:      table.Get(row, schema.FieldRemark),
			OldStatus:   domain.TicketStatus(table.Get(row, schema.FieldOldStatus)),
			NewStatus:   domain.TicketStatus(table.Get(row, schema.FieldNewStatus)),
			Rating:      parseRating(table.Get(row, schema.FieldRating)),
		}
		if date := parseTime(table.Get(row, schema.FieldDate)); date != nil {
			entry.Date = *date
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
