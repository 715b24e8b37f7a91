package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens today's record for the resolved employee
	CheckIn(ctx context.Context, req CheckInRequest, meta RequestMeta) (AttendanceResponse, error)

	// CheckOut closes the open record and computes the hours
	CheckOut(ctx context.Context, req CheckOutRequest, meta RequestMeta) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// ListAttendance lists records, restricted to the caller's own employee without view_all
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ListTimekeeping is the HR listing with name/department search and page totals
	ListTimekeeping(ctx context.Context, filter AttendanceFilter) (TimekeepingResponse, error)

	// UpdateAttendance applies an audited manual correction
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest, meta RequestMeta) (AttendanceResponse, error)

	// DeleteAttendance removes a record; audited
	DeleteAttendance(ctx context.Context, id string, meta RequestMeta) error

	// MarkAbsent records absences for active employees without a record on date
	MarkAbsent(ctx context.Context, date time.Time) (int64, error)
}
