package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/rowstore"
	"github.com/spec-kit/facility-helpdesk/internal/schema"
)

// StaffTable is the backing table name for the staff directory.
const StaffTable = "Staff"

var staffFields = []schema.Field{
	schema.FieldName,
	schema.FieldDepartment,
	schema.FieldMobile,
	schema.FieldRole,
	schema.FieldActive,
	schema.FieldPassword,
}

// StaffRepository reads the staff directory used for creation fan-out and
// login. The directory is maintained externally.
type StaffRepository interface {
	GetByName(ctx context.Context, name string) (*domain.StaffMember, error)
	ListByDepartment(ctx context.Context, department string) ([]domain.StaffMember, error)
	ListAdmins(ctx context.Context) ([]domain.StaffMember, error)
}

type staffRepository struct {
	resolver *schema.Resolver
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(store rowstore.Store) StaffRepository {
	return &staffRepository{resolver: schema.NewResolver(store)}
}

func (r *staffRepository) all(ctx context.Context) ([]domain.StaffMember, error) {
	table, err := r.resolver.Resolve(ctx, StaffTable, staffFields)
	if err != nil {
		return nil, err
	}
	rows, _ := table.DataRows()
	members := make([]domain.StaffMember, 0, len(rows))
	for _, row := range rows {
		name := table.Get(row, schema.FieldName)
		if name == "" {
			continue
		}
		members = append(members, domain.StaffMember{
			Name:         name,
			Department:   table.Get(row, schema.FieldDepartment),
			Mobile:       table.Get(row, schema.FieldMobile),
			Role:         domain.StaffRole(strings.ToLower(table.Get(row, schema.FieldRole))),
			Active:       parseBool(table.Get(row, schema.FieldActive)),
			PasswordHash: table.Get(row, schema.FieldPassword),
		})
	}
	return members, nil
}

func (r *staffRepository) GetByName(ctx context.Context, name string) (*domain.StaffMember, error) {
	members, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if strings.EqualFold(members[i].Name, name) {
			return &members[i], nil
		}
	}
	return nil, nil
}

func (r *staffRepository) ListByDepartment(ctx context.Context, department string) ([]domain.StaffMember, error) {
	members, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	var matched []domain.StaffMember
	for _, member := range members {
		if member.Active && strings.EqualFold(member.Department, department) {
			matched = append(matched, member)
		}
	}
	return matched, nil
}

func (r *staffRepository) ListAdmins(ctx context.Context) ([]domain.StaffMember, error) {
	members, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	var admins []domain.StaffMember
	for _, member := range members {
		if member.Active && member.Role == domain.StaffRoleAdmin {
			admins = append(admins, member)
		}
	}
	return admins, nil
}
