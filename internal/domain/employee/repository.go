package employee

import (
	"context"
	"time"
)

// EmployeeRepository is the read-only employee directory used by attendance.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	// ListActiveIDs returns active employees hired on or before date.
	ListActiveIDs(ctx context.Context, date time.Time) ([]string, error)
}
