package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
)

const markAbsentJob = "mark_absent_employees"

// AbsenceMarker is the part of the attendance service the sweep needs.
type AbsenceMarker interface {
	MarkAbsent(ctx context.Context, date time.Time) (int64, error)
}

var _ AbsenceMarker = (attendance.AttendanceService)(nil)

type AttendanceJobs struct {
	marker   AbsenceMarker
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewAttendanceJobs(marker AbsenceMarker, interval time.Duration, loc *time.Location) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &AttendanceJobs{
		marker:   marker,
		interval: interval,
		loc:      loc,
		now:      time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(markAbsentJob, j.interval, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees records yesterday's absences. Re-running is harmless:
// employees that already have a row for the day are skipped.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	today := j.now().In(j.loc)
	yesterday := time.Date(today.Year(), today.Month(), today.Day()-1, 0, 0, 0, 0, time.UTC)

	n, err := j.marker.MarkAbsent(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to mark absences for %s: %w", yesterday.Format("2006-01-02"), err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Cron: marked absent employees", "date", yesterday.Format("2006-01-02"), "count", n)
	}
	return nil
}
