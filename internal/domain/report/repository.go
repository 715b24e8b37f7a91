package report

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
)

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// ListAttendance returns every record in [start, end] ordered by date then employee code
	ListAttendance(ctx context.Context, start, end time.Time, employeeID *string) ([]attendance.Attendance, error)
}
