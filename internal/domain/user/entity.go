package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // System administrator - full access
	RoleHR       Role = "hr"       // HR staff - regularization, reports, audit
	RoleManager  Role = "manager"  // Can view team attendance
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}

type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Role         Role
	Grants       []Permission
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	EmployeeID *string
}

// Identity returns the authorization view of the user.
func (u *User) Identity() Identity {
	return Identity{
		UserID:     u.ID,
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
		Role:       u.Role,
		Grants:     u.Grants,
	}
}
