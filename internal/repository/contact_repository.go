package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	"github.com/spec-kit/facility-helpdesk/internal/schema"
)

// ContactTable is the backing table name for escalation contacts.
const ContactTable = "EscalationContacts"

var contactFields = []schema.Field{
	schema.FieldLevel,
	schema.FieldName,
	schema.FieldMobile,
}

var seedLevels = []domain.EscalationLevel{
	domain.EscalationL1,
	domain.EscalationL2,
	domain.EscalationL3,
}

// ContactRepository reads the escalation tier directory. The table is edited
// externally; the engine only seeds placeholders on first access.
type ContactRepository interface {
	Get(ctx context.Context, level domain.EscalationLevel) (*domain.EscalationContact, error)
	List(ctx context.Context) ([]domain.EscalationContact, error)
}

type contactRepository struct {
	resolver *schema.Resolver
	store    rowstore.Store
}

// NewContactRepository instantiates the repository.
func NewContactRepository(store rowstore.Store) ContactRepository {
	return &contactRepository{resolver: schema.NewResolver(store), store: store}
}

func (r *contactRepository) Get(ctx context.Context, level domain.EscalationLevel) (*domain.EscalationContact, error) {
	contacts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].Level == level {
			return &contacts[i], nil
		}
	}
	return nil, fmt.Errorf("escalation contact %s not found", level)
}

func (r *contactRepository) List(ctx context.Context) ([]domain.EscalationContact, error) {
	table, err := r.resolver.Resolve(ctx, ContactTable, contactFields)
	if err != nil {
		return nil, err
	}
	rows, _ := table.DataRows()
	if len(rows) == 0 {
		if err := r.seed(ctx, table); err != nil {
			return nil, err
		}
		if table, err = r.resolver.Resolve(ctx, ContactTable, contactFields); err != nil {
			return nil, err
		}
		rows, _ = table.DataRows()
	}

	contacts := make([]domain.EscalationContact, 0, len(rows))
	for _, row := range rows {
		level := table.Get(row, schema.FieldLevel)
		if level == "" {
			continue
		}
		contacts = append(contacts, domain.EscalationContact{
			Level:  domain.EscalationLevel(level),
			Name:   table.Get(row, schema.FieldName),
			Mobile: table.Get(row, schema.FieldMobile),
		})
	}
	return contacts, nil
}

func (r *contactRepository) seed(ctx context.Context, table *schema.Table) error {
	for _, level := range seedLevels {
		row := make([]string, len(table.Headers))
		set := func(f schema.Field, value string) {
			if col, ok := table.Columns.Col(f); ok && col < len(row) {
				row[col] = value
			}
		}
		set(schema.FieldLevel, string(level))
		set(schema.FieldName, fmt.Sprintf("%s Contact", level))
		set(schema.FieldMobile, "0000000000")
		if err := r.store.AppendRow(ctx, ContactTable, row); err != nil {
			return err
		}
	}
	return nil
}
