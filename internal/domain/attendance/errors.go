package attendance

import "errors"

// Attendance domain errors
var (
	// Validation
	ErrEmployeeRequired      = errors.New("employee_id is required: no employee is linked to this account")
	ErrCheckOutBeforeCheckIn = errors.New("check_out must not be before check_in")

	// Conflicts
	ErrAlreadyCheckedIn    = errors.New("you have already checked in today")
	ErrNotCheckedIn        = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut   = errors.New("you have already checked out")
	ErrDuplicateAttendance = errors.New("an attendance record already exists for this employee on this date")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrForbidden          = errors.New("not allowed to access this attendance record")
)
