package domain

// StaffRole enumerates staff permissions.
type StaffRole string

const (
	StaffRoleAdmin StaffRole = "admin"
	StaffRoleStaff StaffRole = "staff"
)

// StaffMember is a directory entry used for creation fan-out and login.
type StaffMember struct {
	Name         string
	Department   string
	Mobile       string
	Role         StaffRole
	Active       bool
	PasswordHash string
}

// IsAdmin reports whether the member may perform admin-only actions
// such as forced closure.
func (s *StaffMember) IsAdmin() bool {
	return s.Role == StaffRoleAdmin
}
