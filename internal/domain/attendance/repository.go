package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Lock* methods take a row lock and must be called inside a transaction.
type AttendanceRepository interface {
	// CreateCheckIn inserts the day's record atomically. Returns ErrAlreadyCheckedIn
	// when a record for (employee, date) already exists.
	CreateCheckIn(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves attendance by ID joined with employee details
	GetByID(ctx context.Context, id string) (Attendance, error)

	LockByID(ctx context.Context, id string) (Attendance, error)

	// LockByEmployeeAndDate returns ErrAttendanceNotFound when the employee has no record that day
	LockByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)

	UpdateCheckOut(ctx context.Context, attendance Attendance) error

	// Update writes every mutable column. Returns ErrDuplicateAttendance when the
	// new (employee, date) collides with another record, and
	// ErrCheckOutBeforeCheckIn when check_out precedes check_in.
	Update(ctx context.Context, attendance Attendance) error

	Delete(ctx context.Context, id string) error

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// CreateAbsences inserts absent rows for the employees without a record on date
	CreateAbsences(ctx context.Context, employeeIDs []string, date time.Time) (int64, error)
}
