package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountInactive):
		Unauthorized(w, "Account is inactive")
	case errors.Is(err, user.ErrUnauthenticated):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, attendance.ErrForbidden):
		Forbidden(w, err.Error())

	// Employee
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Fail(w, http.StatusBadRequest, "EMPLOYEE_INACTIVE", err.Error())

	// Attendance
	case errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		ValidationError(w, validator.ValidationErrors{{Field: "check_out", Message: err.Error()}}.ToMap())
	case errors.Is(err, attendance.ErrEmployeeRequired):
		Fail(w, http.StatusBadRequest, "EMPLOYEE_REQUIRED", err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Fail(w, http.StatusBadRequest, "ALREADY_CHECKED_IN", err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Fail(w, http.StatusBadRequest, "NOT_CHECKED_IN", err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Fail(w, http.StatusBadRequest, "ALREADY_CHECKED_OUT", err.Error())
	case errors.Is(err, attendance.ErrDuplicateAttendance):
		Fail(w, http.StatusBadRequest, "DUPLICATE_ATTENDANCE", err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
