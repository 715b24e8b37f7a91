package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/clientinfo"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/worktime"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	eventCheckIn     = "check_in"
	eventCheckOut    = "check_out"
	eventCorrection  = "correction"
	eventDelete      = "delete"
	eventAbsentSweep = "absence_sweep"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	audit.AuditRepository
	policy  user.Policy
	calc    *worktime.Calculator
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	auditRepo audit.AuditRepository,
	policy user.Policy,
	calc *worktime.Calculator,
	m *metrics.Metrics,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		AuditRepository:      auditRepo,
		policy:               policy,
		calc:                 calc,
		metrics:              m,
		loc:                  loc,
		now:                  time.Now,
	}
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest, meta attendance.RequestMeta) (resp attendance.AttendanceResponse, err error) {
	defer func() { s.record(eventCheckIn, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	id, err := s.identity(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.resolveEmployee(ctx, id, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	newAttendance := attendance.Attendance{
		EmployeeID: emp.ID,
		Date:       s.calendarDay(now),
		CheckIn:    &now,
		Status:     attendance.StatusPresent,
		Note:       cleanNote(req.Note),
	}
	newAttendance.ApplyCheckIn(eventMeta(req.Latitude, req.Longitude, req.DeviceInfo, meta))

	created, err := s.AttendanceRepository.CreateCheckIn(ctx, newAttendance)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create check-in: %w", err)
	}

	created.EmployeeName = &emp.FullName
	created.EmployeeCode = &emp.EmployeeCode
	created.Department = emp.Department

	return s.mapAttendanceToResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest, meta attendance.RequestMeta) (resp attendance.AttendanceResponse, err error) {
	defer func() { s.record(eventCheckOut, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	id, err := s.identity(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.resolveEmployee(ctx, id, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	today := s.calendarDay(now)

	var (
		closed  attendance.Attendance
		elapsed float64
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		att, err := s.lockOpenRecord(ctx, emp.ID, today)
		if err != nil {
			return err
		}

		bd := s.calc.Compute(att.CheckIn, &now)
		att.CheckOut = &now
		att.WorkHours = worktime.Round(bd.WorkHours)
		att.OvertimeHours = worktime.Round(bd.OvertimeHours)
		att.TotalHours = worktime.Round(bd.TotalHours)
		att.Note = appendNote(att.Note, cleanNote(req.Note))
		att.ApplyCheckOut(eventMeta(req.Latitude, req.Longitude, req.DeviceInfo, meta))

		if err := s.AttendanceRepository.UpdateCheckOut(ctx, att); err != nil {
			return fmt.Errorf("failed to update check-out: %w", err)
		}

		closed, elapsed = att, bd.ElapsedHours
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.metrics.ObserveWorkHours(elapsed)

	closed.UpdatedAt = now
	return s.mapAttendanceToResponse(closed), nil
}

// lockOpenRecord finds the record a check-out closes: today's, or yesterday's
// when it is still open so overnight shifts can finish.
func (s *AttendanceServiceImpl) lockOpenRecord(ctx context.Context, employeeID string, today time.Time) (attendance.Attendance, error) {
	att, err := s.AttendanceRepository.LockByEmployeeAndDate(ctx, employeeID, today)
	switch {
	case err == nil:
		if att.CheckIn == nil {
			return attendance.Attendance{}, attendance.ErrNotCheckedIn
		}
		if att.CheckOut != nil {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return att, nil
	case !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.Attendance{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	prev, err := s.AttendanceRepository.LockByEmployeeAndDate(ctx, employeeID, today.AddDate(0, 0, -1))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Attendance{}, attendance.ErrNotCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get previous attendance: %w", err)
	}
	if !prev.IsOpen() {
		return attendance.Attendance{}, attendance.ErrNotCheckedIn
	}
	return prev, nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, attendanceID string) (attendance.AttendanceResponse, error) {
	id, err := s.identity(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if !validator.IsValidUUID(attendanceID) {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	att, err := s.AttendanceRepository.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if !id.IsEmployee(att.EmployeeID) && !s.policy.Allows(id, user.PermissionAttendanceViewAll) {
		return attendance.AttendanceResponse{}, attendance.ErrForbidden
	}

	return s.mapAttendanceToResponse(att), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	id, err := s.identity(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	// Name and department search belong to the timekeeping listing.
	filter.EmployeeName = nil
	filter.Department = nil

	if !s.policy.Allows(id, user.PermissionAttendanceViewAll) {
		if !id.HasEmployee() {
			return attendance.ListAttendanceResponse{}, attendance.ErrEmployeeRequired
		}
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && !id.IsEmployee(*filter.EmployeeID) {
			return attendance.ListAttendanceResponse{}, attendance.ErrForbidden
		}
		filter.EmployeeID = id.EmployeeID
	}

	attendances, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	return s.buildList(attendances, total, filter), nil
}

// ListTimekeeping implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListTimekeeping(ctx context.Context, filter attendance.AttendanceFilter) (attendance.TimekeepingResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.TimekeepingResponse{}, err
	}

	id, err := s.identity(ctx)
	if err != nil {
		return attendance.TimekeepingResponse{}, err
	}
	if !s.policy.Allows(id, user.PermissionAttendanceViewAll) {
		return attendance.TimekeepingResponse{}, attendance.ErrForbidden
	}

	attendances, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.TimekeepingResponse{}, fmt.Errorf("failed to list timekeeping records: %w", err)
	}

	list := s.buildList(attendances, total, filter)

	var summary attendance.TimekeepingSummary
	for _, r := range list.Attendances {
		summary.TotalWorkHours += r.WorkHours
		summary.TotalOvertimeHours += r.OvertimeHours
		summary.TotalHours += r.TotalHours
		switch attendance.Status(r.Status) {
		case attendance.StatusPresent:
			summary.Present++
		case attendance.StatusAbsent:
			summary.Absent++
		case attendance.StatusLate:
			summary.Late++
		case attendance.StatusPartial:
			summary.Partial++
		}
	}
	summary.TotalWorkHours = worktime.RoundFloat(summary.TotalWorkHours)
	summary.TotalOvertimeHours = worktime.RoundFloat(summary.TotalOvertimeHours)
	summary.TotalHours = worktime.RoundFloat(summary.TotalHours)

	return attendance.TimekeepingResponse{
		ListAttendanceResponse: list,
		Summary:                summary,
	}, nil
}

func (s *AttendanceServiceImpl) buildList(attendances []attendance.Attendance, total int64, filter attendance.AttendanceFilter) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, s.mapAttendanceToResponse(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}

// UpdateAttendance implements attendance.AttendanceService.
// A manual correction; hours are recomputed only when check_in or check_out changes.
func (s *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest, meta attendance.RequestMeta) (resp attendance.AttendanceResponse, err error) {
	defer func() { s.record(eventCorrection, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	id, err := s.identity(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !s.policy.Allows(id, user.PermissionAttendanceCorrect) {
		return attendance.AttendanceResponse{}, user.ErrInsufficientPermissions
	}

	var updated attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.AttendanceRepository.LockByID(ctx, req.ID)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrAttendanceNotFound
			}
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		next, err := s.applyCorrection(current, req)
		if err != nil {
			return err
		}

		changes := diffAttendance(current, next)
		if len(changes) == 0 {
			updated = current
			return nil
		}

		if err := s.AttendanceRepository.Update(ctx, next); err != nil {
			if errors.Is(err, attendance.ErrDuplicateAttendance) ||
				errors.Is(err, attendance.ErrAttendanceNotFound) ||
				errors.Is(err, attendance.ErrCheckOutBeforeCheckIn) {
				return err
			}
			return fmt.Errorf("failed to update attendance: %w", err)
		}

		if err := s.writeAudit(ctx, id, audit.ActionAttendanceCorrected, next.ID, changes, meta); err != nil {
			return err
		}

		updated, err = s.AttendanceRepository.GetByID(ctx, next.ID)
		if err != nil {
			return fmt.Errorf("failed to reload attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.mapAttendanceToResponse(updated), nil
}

func derivedHourOverrides(req attendance.UpdateAttendanceRequest) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, h := range []struct {
		field string
		value *float64
	}{
		{"work_hours", req.WorkHours},
		{"overtime_hours", req.OvertimeHours},
		{"total_hours", req.TotalHours},
	} {
		if h.value != nil {
			errs = append(errs, validator.ValidationError{
				Field:   h.field,
				Message: h.field + " is derived from check_in and check_out and cannot be set",
			})
		}
	}
	return errs
}

// applyCorrection returns current with the request applied.
func (s *AttendanceServiceImpl) applyCorrection(current attendance.Attendance, req attendance.UpdateAttendanceRequest) (attendance.Attendance, error) {
	next := current

	if req.Date != nil {
		d, _ := validator.IsValidDate(*req.Date)
		next.Date = dateOnly(d)
	}

	if req.CheckIn != nil {
		t, err := s.resolveInstant(*req.CheckIn, next.Date)
		if err != nil {
			return attendance.Attendance{}, fieldError("check_in", err)
		}
		next.CheckIn = t
	}
	if req.CheckOut != nil {
		t, err := s.resolveInstant(*req.CheckOut, next.Date)
		if err != nil {
			return attendance.Attendance{}, fieldError("check_out", err)
		}
		next.CheckOut = t
	}
	if next.CheckOut != nil && next.CheckIn == nil {
		return attendance.Attendance{}, validator.ValidationErrors{{
			Field:   "check_out",
			Message: "check_out requires a check_in",
		}}
	}
	if next.CheckIn != nil && next.CheckOut != nil {
		out := worktime.NormalizeCheckOut(*next.CheckIn, *next.CheckOut)
		if out.Before(*next.CheckIn) {
			return attendance.Attendance{}, validator.ValidationErrors{{
				Field:   "check_out",
				Message: "check_out must not be before check_in",
			}}
		}
		next.CheckOut = &out
	}

	if req.HasTimeChange() {
		bd := s.calc.Compute(next.CheckIn, next.CheckOut)
		next.WorkHours = worktime.Round(bd.WorkHours)
		next.OvertimeHours = worktime.Round(bd.OvertimeHours)
		next.TotalHours = worktime.Round(bd.TotalHours)
	} else {
		// Hours of a closed record are always derived from its instants.
		if next.CheckIn != nil && next.CheckOut != nil {
			if errs := derivedHourOverrides(req); len(errs) > 0 {
				return attendance.Attendance{}, errs
			}
		}
		if req.WorkHours != nil {
			next.WorkHours = worktime.Round(*req.WorkHours)
		}
		if req.OvertimeHours != nil {
			next.OvertimeHours = worktime.Round(*req.OvertimeHours)
		}
		if req.TotalHours != nil {
			next.TotalHours = worktime.Round(*req.TotalHours)
		}
	}

	if req.Status != nil {
		next.Status = attendance.Status(strings.ToLower(*req.Status))
	}
	if req.Note != nil {
		next.Note = cleanNote(req.Note)
	}

	setString(&next.CheckInLocation, req.CheckInLocation)
	setFloat(&next.CheckInLatitude, req.CheckInLatitude)
	setFloat(&next.CheckInLongitude, req.CheckInLongitude)
	setString(&next.CheckInIP, req.CheckInIP)
	setString(&next.CheckInDevice, req.CheckInDevice)
	setString(&next.CheckOutLocation, req.CheckOutLocation)
	setFloat(&next.CheckOutLatitude, req.CheckOutLatitude)
	setFloat(&next.CheckOutLongitude, req.CheckOutLongitude)
	setString(&next.CheckOutIP, req.CheckOutIP)
	setString(&next.CheckOutDevice, req.CheckOutDevice)

	return next, nil
}

// resolveInstant parses a corrected check-in/check-out value. Empty clears it,
// bare times land on day, and zone-less date-times are read in APP_TIMEZONE.
func (s *AttendanceServiceImpl) resolveInstant(value string, day time.Time) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	in, err := worktime.ParseInstant(value)
	if err != nil {
		return nil, err
	}

	t := in.Time
	switch {
	case !in.HasDate:
		t = time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), s.loc)
	case !hasZone(value):
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), s.loc)
	}
	t = t.UTC()
	return &t, nil
}

func hasZone(value string) bool {
	v := strings.TrimSpace(value)
	if _, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return true
	}
	return false
}

// DeleteAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, attendanceID string, meta attendance.RequestMeta) (err error) {
	defer func() { s.record(eventDelete, err) }()

	id, err := s.identity(ctx)
	if err != nil {
		return err
	}
	if !s.policy.Allows(id, user.PermissionAttendanceDelete) {
		return user.ErrInsufficientPermissions
	}
	if !validator.IsValidUUID(attendanceID) {
		return attendance.ErrAttendanceNotFound
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.AttendanceRepository.LockByID(ctx, attendanceID)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrAttendanceNotFound
			}
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		if err := s.AttendanceRepository.Delete(ctx, attendanceID); err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrAttendanceNotFound
			}
			return fmt.Errorf("failed to delete attendance: %w", err)
		}

		return s.writeAudit(ctx, id, audit.ActionAttendanceDeleted, attendanceID, diffAttendance(current, attendance.Attendance{}), meta)
	})
}

// MarkAbsent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAbsent(ctx context.Context, date time.Time) (n int64, err error) {
	defer func() { s.record(eventAbsentSweep, err) }()

	ids, err := s.EmployeeRepository.ListActiveIDs(ctx, dateOnly(date))
	if err != nil {
		return 0, fmt.Errorf("failed to list active employees: %w", err)
	}

	n, err = s.AttendanceRepository.CreateAbsences(ctx, ids, dateOnly(date))
	if err != nil {
		return 0, fmt.Errorf("failed to mark absences: %w", err)
	}

	slog.InfoContext(ctx, "absences recorded",
		"date", date.Format("2006-01-02"),
		"active_employees", len(ids),
		"marked", n,
	)
	return n, nil
}

func (s *AttendanceServiceImpl) identity(ctx context.Context) (user.Identity, error) {
	id, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return user.Identity{}, fmt.Errorf("%w: %v", user.ErrUnauthenticated, err)
	}
	return id, nil
}

// resolveEmployee picks the employee an event is recorded for: the one named
// in the request, else the caller's own.
func (s *AttendanceServiceImpl) resolveEmployee(ctx context.Context, id user.Identity, requested *string) (employee.Employee, error) {
	employeeID := ""
	switch {
	case requested != nil && *requested != "":
		if !id.IsEmployee(*requested) && !s.policy.Allows(id, user.PermissionAttendanceManage) {
			return employee.Employee{}, attendance.ErrForbidden
		}
		employeeID = *requested
	case id.HasEmployee():
		employeeID = *id.EmployeeID
	default:
		return employee.Employee{}, attendance.ErrEmployeeRequired
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

func (s *AttendanceServiceImpl) writeAudit(ctx context.Context, id user.Identity, action audit.Action, entityID string, changes map[string]audit.Change, meta attendance.RequestMeta) error {
	logID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate audit log id: %w", err)
	}

	var actor *string
	if validator.IsValidUUID(id.UserID) {
		actor = &id.UserID
	}

	_, err = s.AuditRepository.Create(ctx, audit.Log{
		ID:          logID.String(),
		ActorUserID: actor,
		Action:      action,
		EntityType:  audit.EntityAttendance,
		EntityID:    entityID,
		Changes:     changes,
		IPAddress:   optional(meta.IP),
	})
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// record counts the outcome of an attendance event.
func (s *AttendanceServiceImpl) record(event string, err error) {
	var verr validator.ValidationErrors
	switch {
	case err == nil:
		s.metrics.RecordEvent(event, metrics.OutcomeSuccess)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrDuplicateAttendance):
		s.metrics.RecordEvent(event, metrics.OutcomeConflict)
	case errors.As(err, &verr),
		errors.Is(err, attendance.ErrEmployeeRequired),
		errors.Is(err, attendance.ErrCheckOutBeforeCheckIn),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, attendance.ErrForbidden),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrEmployeeInactive),
		errors.Is(err, user.ErrUnauthenticated),
		errors.Is(err, user.ErrInsufficientPermissions):
		s.metrics.RecordEvent(event, metrics.OutcomeInvalid)
	default:
		s.metrics.RecordEvent(event, metrics.OutcomeError)
	}
}

// calendarDay is the APP_TIMEZONE calendar day of t, stored as UTC midnight.
func (s *AttendanceServiceImpl) calendarDay(t time.Time) time.Time {
	return dateOnly(t.In(s.loc))
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse.
// Hours are recomputed from the raw instants whenever both are present.
func (s *AttendanceServiceImpl) mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	workHours, _ := att.WorkHours.Float64()
	overtimeHours, _ := att.OvertimeHours.Float64()
	totalHours, _ := att.TotalHours.Float64()
	if att.CheckIn != nil && att.CheckOut != nil {
		bd := s.calc.Compute(att.CheckIn, att.CheckOut)
		workHours, overtimeHours, totalHours = bd.WorkHours, bd.OvertimeHours, bd.TotalHours
	}

	return attendance.AttendanceResponse{
		ID:                att.ID,
		EmployeeID:        att.EmployeeID,
		EmployeeName:      att.EmployeeName,
		EmployeeCode:      att.EmployeeCode,
		Department:        att.Department,
		Date:              att.Date.Format("2006-01-02"),
		CheckIn:           s.formatTime(att.CheckIn),
		CheckOut:          s.formatTime(att.CheckOut),
		WorkHours:         worktime.RoundFloat(workHours),
		OvertimeHours:     worktime.RoundFloat(overtimeHours),
		TotalHours:        worktime.RoundFloat(totalHours),
		Status:            string(att.Status),
		Note:              att.Note,
		CheckInLocation:   att.CheckInLocation,
		CheckInLatitude:   att.CheckInLatitude,
		CheckInLongitude:  att.CheckInLongitude,
		CheckInIP:         att.CheckInIP,
		CheckInDevice:     att.CheckInDevice,
		CheckOutLocation:  att.CheckOutLocation,
		CheckOutLatitude:  att.CheckOutLatitude,
		CheckOutLongitude: att.CheckOutLongitude,
		CheckOutIP:        att.CheckOutIP,
		CheckOutDevice:    att.CheckOutDevice,
		CreatedAt:         att.CreatedAt.In(s.loc).Format(time.RFC3339),
		UpdatedAt:         att.UpdatedAt.In(s.loc).Format(time.RFC3339),
	}
}

func (s *AttendanceServiceImpl) formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(s.loc).Format(time.RFC3339)
	return &formatted
}

// diffAttendance lists the fields that differ between from and to. A zero to
// value records a deletion.
func diffAttendance(from, to attendance.Attendance) map[string]audit.Change {
	before, after := snapshot(from), snapshot(to)
	changes := make(map[string]audit.Change)
	for field, o := range before {
		if n := after[field]; n != o {
			changes[field] = audit.Change{Old: o, New: n}
		}
	}
	return changes
}

func snapshot(a attendance.Attendance) map[string]any {
	if a.ID == "" {
		return map[string]any{
			"employee_id": nil, "date": nil, "check_in": nil, "check_out": nil,
			"work_hours": nil, "overtime_hours": nil, "total_hours": nil, "status": nil, "note": nil,
			"check_in_location": nil, "check_in_latitude": nil, "check_in_longitude": nil,
			"check_in_ip": nil, "check_in_device": nil,
			"check_out_location": nil, "check_out_latitude": nil, "check_out_longitude": nil,
			"check_out_ip": nil, "check_out_device": nil,
		}
	}
	return map[string]any{
		"employee_id":         a.EmployeeID,
		"date":                a.Date.Format("2006-01-02"),
		"check_in":            timeValue(a.CheckIn),
		"check_out":           timeValue(a.CheckOut),
		"work_hours":          decimalValue(a.WorkHours),
		"overtime_hours":      decimalValue(a.OvertimeHours),
		"total_hours":         decimalValue(a.TotalHours),
		"status":              string(a.Status),
		"note":                stringValue(a.Note),
		"check_in_location":   stringValue(a.CheckInLocation),
		"check_in_latitude":   floatValue(a.CheckInLatitude),
		"check_in_longitude":  floatValue(a.CheckInLongitude),
		"check_in_ip":         stringValue(a.CheckInIP),
		"check_in_device":     stringValue(a.CheckInDevice),
		"check_out_location":  stringValue(a.CheckOutLocation),
		"check_out_latitude":  floatValue(a.CheckOutLatitude),
		"check_out_longitude": floatValue(a.CheckOutLongitude),
		"check_out_ip":        stringValue(a.CheckOutIP),
		"check_out_device":    stringValue(a.CheckOutDevice),
	}
}

func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func decimalValue(d decimal.Decimal) any {
	return d.StringFixed(2)
}

func stringValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatValue(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func eventMeta(lat, lng *float64, device *clientinfo.DeviceInfo, meta attendance.RequestMeta) attendance.EventMeta {
	m := attendance.EventMeta{
		Latitude:  lat,
		Longitude: lng,
		IP:        optional(meta.IP),
		Device:    optional(clientinfo.Describe(device, meta.UserAgent)),
	}
	if lat != nil && lng != nil {
		loc := fmt.Sprintf("%.6f,%.6f", *lat, *lng)
		m.Location = &loc
	}
	return m
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func cleanNote(note *string) *string {
	if note == nil {
		return nil
	}
	return optional(strings.TrimSpace(*note))
}

func appendNote(existing, note *string) *string {
	switch {
	case note == nil:
		return existing
	case existing == nil:
		return note
	}
	joined := *existing + "\n" + *note
	return &joined
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func setString(dst **string, v *string) {
	if v != nil {
		*dst = optional(strings.TrimSpace(*v))
	}
}

func setFloat(dst **float64, v *float64) {
	if v != nil {
		f := *v
		*dst = &f
	}
}

func fieldError(field string, err error) error {
	return validator.ValidationErrors{{
		Field:   field,
		Message: fmt.Sprintf("%s is invalid: %v", field, err),
	}}
}
