package repository

import (
	"context"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	"github.com/spec-kit/facility-helpdesk/internal/schema"
)

// RatingTable is the backing table name for the rating ledger.
const RatingTable = "Ratings"

var ratingFields = []schema.Field{
	schema.FieldID,
	schema.FieldRating,
	schema.FieldRemark,
	schema.FieldResolvedBy,
	schema.FieldReportedBy,
	schema.FieldDate,
}

// RatingRepository is the append-only rating ledger, the source of truth for
// the one-rating-per-ticket invariant.
type RatingRepository interface {
	// Exists reports whether a rating has been recorded for the ticket.
	// A linear scan; adequate at this system's scale.
	Exists(ctx context.Context, ticketID string) (bool, error)
	Append(ctx context.Context, record *domain.RatingRecord) error
}

type ratingRepository struct {
	resolver *schema.Resolver
	store    rowstore.Store
}

// NewRatingRepository instantiates the ledger.
func NewRatingRepository(store rowstore.Store) RatingRepository {
	return &ratingRepository{resolver: schema.NewResolver(store), store: store}
}

func (r *ratingRepository) Exists(ctx context.Context, ticketID string) (bool, error) {
	table, err := r.resolver.Resolve(ctx, RatingTable, ratingFields)
	if err != nil {
		return false, err
	}
	rows, _ := table.DataRows()
	for _, row := range rows {
		if table.Get(row, schema.FieldID) == ticketID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ratingRepository) Append(ctx context.Context, record *domain.RatingRecord) error {
	table, err := r.resolver.Resolve(ctx, RatingTable, ratingFields)
	if err != nil {
		return err
	}
	row := make([]string, len(table.Headers))
	set := func(f schema.Field, value string) {
		if col, ok := table.Columns.Col(f); ok && col < len(row) {
			row[col] = value
		}
	}
	rating := record.Rating
	set(schema.FieldID, record.TicketID)
	set(schema.FieldRating, encodeRating(&rating))
	set(schema.FieldRemark, record.Remark)
	set(schema.FieldResolvedBy, record.Resolver)
	set(schema.FieldReportedBy, record.Reporter)
	set(schema.FieldDate, encodeTime(&record.Date))
	return r.store.AppendRow(ctx, RatingTable, row)
}
