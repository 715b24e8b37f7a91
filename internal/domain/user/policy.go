package user

// Identity is the authenticated caller as seen by services and middleware.
type Identity struct {
	UserID     string
	Email      string
	EmployeeID *string
	Role       Role
	Grants     []Permission
}

// HasEmployee reports whether the caller is linked to an employee record.
func (i Identity) HasEmployee() bool {
	return i.EmployeeID != nil && *i.EmployeeID != ""
}

// IsEmployee reports whether employeeID is the caller's own employee record.
func (i Identity) IsEmployee(employeeID string) bool {
	return i.HasEmployee() && *i.EmployeeID == employeeID
}

// Policy is the single authorization decision point.
type Policy interface {
	Allows(id Identity, perm Permission) bool
}

// RolePolicy allows a permission when the caller's role carries it or it was
// granted to the caller explicitly.
type RolePolicy struct{}

func NewRolePolicy() RolePolicy {
	return RolePolicy{}
}

func (RolePolicy) Allows(id Identity, perm Permission) bool {
	if HasPermission(id.Role, perm) {
		return true
	}
	for _, g := range id.Grants {
		if g == perm {
			return true
		}
	}
	return false
}
