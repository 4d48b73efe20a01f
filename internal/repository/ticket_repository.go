package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	"github.com/spec-kit/facility-helpdesk/internal/schema"
	apperrors "github.com/spec-kit/facility-helpdesk/pkg/util"
)

// TicketTable is the backing table name for tickets.
const TicketTable = "Tickets"

// ticketFields is the full required column set; resolving with it heals
// stores that predate newer columns such as Rating.
var ticketFields = []schema.Field{
	schema.FieldID,
	schema.FieldDepartment,
	schema.FieldDescription,
	schema.FieldStatus,
	schema.FieldReportedBy,
	schema.FieldResolvedBy,
	schema.FieldRemark,
	schema.FieldHistory,
	schema.FieldTargetDate,
	schema.FieldResolvedDate,
	schema.FieldReopenedDate,
	schema.FieldRating,
	schema.FieldUnit,
	schema.FieldCreatedAt,
}

// TicketRepository encapsulates ticket persistence over the row store.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Insert(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	NextID(ctx context.Context, prefix string) (string, error)
}

type ticketRepository struct {
	resolver *schema.Resolver
	store    rowstore.Store
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(store rowstore.Store) TicketRepository {
	return &ticketRepository{resolver: schema.NewResolver(store), store: store}
}

func (r *ticketRepository) resolve(ctx context.Context) (*schema.Table, error) {
	return r.resolver.Resolve(ctx, TicketTable, ticketFields)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	table, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}
	rows, _ := table.DataRows()
	for _, row := range rows {
		if table.Get(row, schema.FieldID) == id {
			ticket := decodeTicket(table, row)
			return &ticket, nil
		}
	}
	return nil, apperrors.NewTicketNotFound(id)
}

func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	table, err := r.resolve(ctx)
	if err != nil {
		return err
	}
	row := make([]string, len(table.Headers))
	encodeTicket(table, row, ticket)
	return r.store.AppendRow(ctx, TicketTable, row)
}

// Update rewrites every mapped ticket column of the matching row. The schema
// is re-resolved here so a column added since the caller's read cannot make
// the writes land in stale positions.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	table, err := r.resolve(ctx)
	if err != nil {
		return err
	}
	rows, indexes := table.DataRows()
	for i, row := range rows {
		if table.Get(row, schema.FieldID) != ticket.ID {
			continue
		}
		updated := make([]string, len(table.Headers))
		copy(updated, row)
		encodeTicket(table, updated, ticket)
		for col := range updated {
			if col < len(row) && row[col] == updated[col] {
				continue
			}
			if err := r.store.SetCell(ctx, TicketTable, indexes[i], col, updated[col]); err != nil {
				return err
			}
		}
		return nil
	}
	return apperrors.NewTicketNotFound(ticket.ID)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	table, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}
	rows, _ := table.DataRows()
	tickets := make([]domain.Ticket, 0, len(rows))
	for _, row := range rows {
		if table.Get(row, schema.FieldID) == "" {
			continue
		}
		tickets = append(tickets, decodeTicket(table, row))
	}
	return tickets, nil
}

// NextID scans existing identifiers carrying the prefix and returns the next
// zero-padded sequence value.
func (r *ticketRepository) NextID(ctx context.Context, prefix string) (string, error) {
	table, err := r.resolve(ctx)
	if err != nil {
		return "", err
	}
	rows, _ := table.DataRows()
	max := 0
	for _, row := range rows {
		id := table.Get(row, schema.FieldID)
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%05d", prefix, max+1), nil
}

func decodeTicket(table *schema.Table, row []string) domain.Ticket {
	return domain.Ticket{
		ID:           table.Get(row, schema.FieldID),
		Department:   table.Get(row, schema.FieldDepartment),
		Description:  table.Get(row, schema.FieldDescription),
		Status:       domain.TicketStatus(table.Get(row, schema.FieldStatus)),
		ReportedBy:   table.Get(row, schema.FieldReportedBy),
		ResolvedBy:   table.Get(row, schema.FieldResolvedBy),
		Remark:       table.Get(row, schema.FieldRemark),
		History:      table.Get(row, schema.FieldHistory),
		TargetDate:   parseTime(table.Get(row, schema.FieldTargetDate)),
		ResolvedDate: parseTime(table.Get(row, schema.FieldResolvedDate)),
		ReopenedDate: parseTime(table.Get(row, schema.FieldReopenedDate)),
		Rating:       parseRating(table.Get(row, schema.FieldRating)),
		Unit:         table.Get(row, schema.FieldUnit),
		CreatedAt:    parseTime(table.Get(row, schema.FieldCreatedAt)),
	}
}

func encodeTicket(table *schema.Table, row []string, ticket *domain.Ticket) {
	set := func(f schema.Field, value string) {
		if col, ok := table.Columns.Col(f); ok && col < len(row) {
			row[col] = value
		}
	}
	set(schema.FieldID, ticket.ID)
	set(schema.FieldDepartment, ticket.Department)
	set(schema.FieldDescription, ticket.Description)
	set(schema.FieldStatus, string(ticket.Status))
	set(schema.FieldReportedBy, ticket.ReportedBy)
	set(schema.FieldResolvedBy, ticket.ResolvedBy)
	set(schema.FieldRemark, ticket.Remark)
	set(schema.FieldHistory, ticket.History)
	set(schema.FieldTargetDate, encodeTime(ticket.TargetDate))
	set(schema.FieldResolvedDate, encodeTime(ticket.ResolvedDate))
	set(schema.FieldReopenedDate, encodeTime(ticket.ReopenedDate))
	set(schema.FieldRating, encodeRating(ticket.Rating))
	set(schema.FieldUnit, ticket.Unit)
	set(schema.FieldCreatedAt, encodeTime(ticket.CreatedAt))
}
