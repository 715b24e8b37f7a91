package attendance

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/clientinfo"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/worktime"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeTransactor struct{ calls int }

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeAttendanceRepo struct {
	rows map[string]attendance.Attendance
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{rows: map[string]attendance.Attendance{}}
}

func (r *fakeAttendanceRepo) find(employeeID string, date time.Time) (attendance.Attendance, bool) {
	for _, a := range r.rows {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return a, true
		}
	}
	return attendance.Attendance{}, false
}

func (r *fakeAttendanceRepo) CreateCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if _, ok := r.find(a.EmployeeID, a.Date); ok {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt = *a.CheckIn, *a.CheckIn
	r.rows[a.ID] = a
	return a, nil
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	a, ok := r.rows[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *fakeAttendanceRepo) LockByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeAttendanceRepo) LockByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	a, ok := r.find(employeeID, date)
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *fakeAttendanceRepo) UpdateCheckOut(ctx context.Context, a attendance.Attendance) error {
	if _, ok := r.rows[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.rows[a.ID] = a
	return nil
}

func (r *fakeAttendanceRepo) Update(ctx context.Context, a attendance.Attendance) error {
	if _, ok := r.rows[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	if other, ok := r.find(a.EmployeeID, a.Date); ok && other.ID != a.ID {
		return attendance.ErrDuplicateAttendance
	}
	r.rows[a.ID] = a
	return nil
}

func (r *fakeAttendanceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeAttendanceRepo) List(ctx context.Context, f attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	var out []attendance.Attendance
	for _, a := range r.rows {
		if f.EmployeeID != nil && *f.EmployeeID != "" && a.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.Status != nil && *f.Status != "" && string(a.Status) != *f.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, int64(len(out)), nil
}

func (r *fakeAttendanceRepo) CreateAbsences(ctx context.Context, employeeIDs []string, date time.Time) (int64, error) {
	var n int64
	for _, id := range employeeIDs {
		if _, ok := r.find(id, date); ok {
			continue
		}
		row := attendance.Attendance{ID: uuid.NewString(), EmployeeID: id, Date: date, Status: attendance.StatusAbsent}
		r.rows[row.ID] = row
		n++
	}
	return n, nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *fakeEmployeeRepo) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.UserID != nil && *e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) ListActiveIDs(ctx context.Context, date time.Time) ([]string, error) {
	var ids []string
	for id, e := range r.employees {
		if e.IsActive() && !e.HireDate.After(date) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeAuditRepo struct {
	logs []audit.Log
}

func (r *fakeAuditRepo) Create(ctx context.Context, l audit.Log) (audit.Log, error) {
	r.logs = append(r.logs, l)
	return l, nil
}

func (r *fakeAuditRepo) List(ctx context.Context, f audit.AuditLogFilter) ([]audit.Log, int64, error) {
	return r.logs, int64(len(r.logs)), nil
}

// ---- fixture ----

var jakarta = time.FixedZone("WIB", 7*3600)

const (
	anaID    = "0190a2b4-0000-7000-8000-000000000001"
	budiID   = "0190a2b4-0000-7000-8000-000000000002"
	goneID   = "0190a2b4-0000-7000-8000-000000000003"
	joinerID = "0190a2b4-0000-7000-8000-000000000004"
)

type fixture struct {
	svc       *AttendanceServiceImpl
	repo      *fakeAttendanceRepo
	audits    *fakeAuditRepo
	tx        *fakeTransactor
	clock     time.Time
	calcFails int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dept := "Engineering"
	resignedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	employees := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		anaID:    {ID: anaID, EmployeeCode: "EMP-001", FullName: "Ana Putri", Department: &dept, EmploymentStatus: employee.EmploymentStatusActive},
		budiID:   {ID: budiID, EmployeeCode: "EMP-002", FullName: "Budi Santoso", EmploymentStatus: employee.EmploymentStatusActive},
		goneID:   {ID: goneID, EmployeeCode: "EMP-003", FullName: "Gone", EmploymentStatus: employee.EmploymentStatusResigned, DeletedAt: &resignedAt},
		joinerID: {ID: joinerID, EmployeeCode: "EMP-004", FullName: "Nadia Rahma", EmploymentStatus: employee.EmploymentStatusActive, HireDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}}

	f := &fixture{
		repo:   newFakeAttendanceRepo(),
		audits: &fakeAuditRepo{},
		tx:     &fakeTransactor{},
	}
	calc := worktime.NewCalculator(8, worktime.WithFailureHook(func() { f.calcFails++ }))
	svc := NewAttendanceService(f.tx, f.repo, employees, f.audits, user.NewRolePolicy(), calc, metrics.New(), jakarta)
	f.svc = svc.(*AttendanceServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

// at sets the clock to the given Jakarta wall time.
func (f *fixture) at(day, clock string) {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, jakarta)
	if err != nil {
		panic(err)
	}
	f.clock = t
}

func asEmployee(t *testing.T, employeeID string) context.Context {
	return withIdentity(t, user.Identity{UserID: uuid.NewString(), Role: user.RoleEmployee, EmployeeID: &employeeID})
}

func asRole(t *testing.T, role user.Role) context.Context {
	return withIdentity(t, user.Identity{UserID: uuid.NewString(), Role: role})
}

func withIdentity(t *testing.T, id user.Identity) context.Context {
	t.Helper()
	id.Grants = nil
	for _, p := range jwt.EffectivePermissions(id) {
		id.Grants = append(id.Grants, user.Permission(p))
	}
	ctx, err := jwt.NewContext(context.Background(), id)
	require.NoError(t, err)
	return ctx
}

func ptr[T any](v T) *T { return &v }

// ---- check-in / check-out ----

func TestCheckIn_Success(t *testing.T) {
	f := newFixture(t)
	f.at("2024-03-04", "09:00")
	ctx := asEmployee(t, anaID)

	resp, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{
		Note:       ptr("  wfo  "),
		Latitude:   ptr(-6.2),
		Longitude:  ptr(106.816666),
		DeviceInfo: &clientinfo.DeviceInfo{Type: "mobile", OS: "Android", Browser: "Chrome"},
	}, attendance.RequestMeta{IP: "203.0.113.7"})
	require.NoError(t, err)

	assert.Equal(t, anaID, resp.EmployeeID)
	assert.Equal(t, "2024-03-04", resp.Date)
	assert.Equal(t, "2024-03-04T09:00:00+07:00", *resp.CheckIn)
	assert.Nil(t, resp.CheckOut)
	assert.Equal(t, "present", resp.Status)
	assert.Equal(t, "wfo", *resp.Note)
	assert.Equal(t, "-6.200000,106.816666", *resp.CheckInLocation)
	assert.Equal(t, "203.0.113.7", *resp.CheckInIP)
	assert.Equal(t, "Mobile (Android, Chrome)", *resp.CheckInDevice)
	assert.Equal(t, "Ana Putri", *resp.EmployeeName)
	assert.Zero(t, resp.WorkHours)
}

func TestCheckIn_DateFollowsAppTimezone(t *testing.T) {
	f := newFixture(t)
	// 23:30 UTC on the 3rd is already the 4th in Jakarta.
	f.clock = time.Date(2024, 3, 3, 23, 30, 0, 0, time.UTC)

	resp, err := f.svc.CheckIn(asEmployee(t, anaID), attendance.CheckInRequest{}, attendance.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", resp.Date)
}

func TestCheckIn_Twice(t *testing.T) {
	f := newFixture(t)
	f.at("2024-03-04", "09:00")
	ctx := asEmployee(t, anaID)

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{}, attendance.RequestMeta{})
	require.NoError(t, err)

	f.at("2024-03-04", "10:00")
	_, err = f.svc.CheckIn(ctx, attendance.CheckInRequest{}, attendance.RequestMeta{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.Len(t, f.repo.rows, 1)
}

func TestCheckIn_EmployeeResolution(t *testing.T) {
	f := newFixture(t)
	f.at("2024-03-04", "09:00")

	tests := []struct {
		name    string
		ctx     context.Context
		req     attendance.CheckInRequest
		wantErr error
	}{
		{"no linked employee", asRole(t, user.RoleHR), attendance.CheckInRequest{}, attendance.ErrEmployeeRequired},
		{"other employee without manage", asEmployee(t, anaID), attendance.CheckInRequest{EmployeeID: ptr(budiID)}, attendance.ErrForbidden},
		{"unknown employee", asRole(t, user.RoleHR), attendance.CheckInRequest{EmployeeID: ptr(uuid.NewString())}, employee.ErrEmployeeNotFound},
		{"inactive employee", asRole(t, user.RoleHR), attendance.CheckInRequest{EmployeeID: ptr(goneID)}, employee.ErrEmployeeInactive},
		{"unauthenticated", context.Background(), attendance.CheckInRequest{}, user.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CheckIn(tt.ctx, tt.req, attendance.RequestMeta{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	resp, err := f.svc.CheckIn(asRole(t, user.RoleHR), attendance.CheckInRequest{EmployeeID: ptr(budiID)}, attendance.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, budiID, resp.EmployeeID)
}

func TestCheckIn_ValidationError(t *testing.T) {
	f := newFixture(t)
	f.at("2024-03-04", "09:00")

	_, err := f.svc.CheckIn(asEmployee(t, anaID), attendance.CheckInRequest{Latitude: ptr(95.0)}, attendance.RequestMeta{})
	var verr validator.ValidationErrors
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, f.repo.rows)
}

func TestCheckOut_ComputesHours(t *testing.T) {
	f := newFixture(t)
	ctx := asEmployee(t, anaID)

	f.at("2024-03-04", "09:00")
	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{Note: ptr("in")}, attendance.RequestMeta{})
	require.NoError(t, err)

	f.at("2024-03-04", "18:30")
	resp, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest{Note: ptr("out")}, attendance.RequestMeta{
		IP:        "198.51.100.1",
		UserAgent: "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Safari/604.1",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04T18:30:00+07:00", *resp.CheckOut)
	assert.Equal(t, 8.0, resp.WorkHours)
	assert.Equal(t, 1.5, resp.OvertimeHours)
	assert.Equal(t, 8.0, resp.TotalHours)
	assert.Equal(t, "in\nout", *resp.Note)
	assert.Equal(t, "198.51.100.1", *resp.CheckOutIP)
	assert.Contains(t, *resp.CheckOutDevice, "Tablet")

	stored := f.repo.rows[resp.ID]
	assert.True(t, stored.WorkHours.Equal(decimal.NewFromInt(8)))
	assert.True(t, stored.OvertimeHours.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, 1, f.tx.calls)
	assert.Zero(t, f.calcFails)

	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest{}, attendance.RequestMeta{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckOut_NotCheckedIn(t *testing.T) {
	f := newFixture(t)
	f.at("2024-03-04", "18:00")

	_, err := f.svc.CheckOut(asEmployee(t, anaID), attendance.CheckOutRequest{}, attendance.RequestMeta{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOut_AbsentRow(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MarkAbsent(context.Background(), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f.at("2024-03-04", "18:00")
	_, err = f.svc.CheckOut(asEmployee(t, anaID), attendance.CheckOutRequest{}, attendance.RequestMeta{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOut_OvernightShift(t *testing.T) {
	f := newFixture(t)
	ctx := asEmployee(t, anaID)

	f.at("2024-03-04", "22:00")
	in, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{}, attendance.RequestMeta{})
	require.NoError(t, err)

	f.at("2024-03-05", "06:00")
	out, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest{}, attendance.RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "2024-03-04", out.Date)
	assert.Equal(t, 8.0, out.WorkHours)
	assert.Zero(t, out.OvertimeHours)
}

func TestCheckOut_ClosedYesterdayDoesNotCount(t *testing.T) {
	f := newFixture(t)
	ctx := asEmployee(t, anaID)

	f.at("2024-03-04", "09:00")
	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{}, attendance.RequestMeta{})
	require.NoError(t, err)
	f.at("2024-03-04", "17:00")
	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest{}, attendance.RequestMeta{})
	require.NoError(t, err)

	f.at("2024-03-05", "17:00")
	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest{}, attendance.RequestMeta{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

// ---- corrections ----

func seedRecord(t *testing.T, f *fixture, employeeID, day, in, out string) attendance.Attendance {
	t.Helper()
	ctx := asEmployee(t, employeeID)
	f.at(day, in)
	resp, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{}, attendance.RequestMeta{})
	require.NoError(t, err)
	if out != "" {
		f.at(day, out)
		_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest{}, attendance.RequestMeta{})
		require.NoError(t, err)
	}
	return f.repo.rows[resp.ID]
}

func TestUpdateAttendance_RecomputesOnTimeChange(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")

	ctx := asRole(t, user.RoleHR)
	resp, err := f.svc.UpdateAttendance(ctx, attendance.UpdateAttendanceRequest{
		ID:       rec.ID,
		CheckIn:  ptr("08:00"),
		CheckOut: ptr("2024-03-04 19:15:00"),
	}, attendance.RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04T08:00:00+07:00", *resp.CheckIn)
	assert.Equal(t, "2024-03-04T19:15:00+07:00", *resp.CheckOut)
	assert.Equal(t, 8.0, resp.WorkHours)
	assert.Equal(t, 3.25, resp.OvertimeHours)

	require.Len(t, f.audits.logs, 1)
	log := f.audits.logs[0]
	assert.Equal(t, audit.ActionAttendanceCorrected, log.Action)
	assert.Equal(t, rec.ID, log.EntityID)
	assert.Equal(t, "10.0.0.1", *log.IPAddress)
	assert.Contains(t, log.Changes, "check_in")
	assert.Contains(t, log.Changes, "overtime_hours")
	assert.NotContains(t, log.Changes, "status")
	assert.Equal(t, "0.00", log.Changes["overtime_hours"].Old)
	assert.Equal(t, "3.25", log.Changes["overtime_hours"].New)
}

func TestUpdateAttendance_OvernightCorrection(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "")

	resp, err := f.svc.UpdateAttendance(asRole(t, user.RoleAdmin), attendance.UpdateAttendanceRequest{
		ID:       rec.ID,
		CheckIn:  ptr("22:00:00"),
		CheckOut: ptr("06:00:00"),
	}, attendance.RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-05T06:00:00+07:00", *resp.CheckOut)
	assert.Equal(t, 8.0, resp.WorkHours)
	assert.Zero(t, resp.OvertimeHours)
}

func TestUpdateAttendance_ExplicitHoursWithoutTimeChange(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "")

	resp, err := f.svc.UpdateAttendance(asRole(t, user.RoleHR), attendance.UpdateAttendanceRequest{
		ID:        rec.ID,
		WorkHours: ptr(4.0),
		Status:    ptr("PARTIAL"),
	}, attendance.RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, 4.0, resp.WorkHours)
	assert.Equal(t, "partial", resp.Status)
	assert.True(t, f.repo.rows[rec.ID].WorkHours.Equal(decimal.NewFromInt(4)))
}

func TestUpdateAttendance_RejectsHoursOnClosedRecord(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")

	_, err := f.svc.UpdateAttendance(asRole(t, user.RoleHR), attendance.UpdateAttendanceRequest{
		ID:            rec.ID,
		WorkHours:     ptr(4.0),
		OvertimeHours: ptr(0.5),
	}, attendance.RequestMeta{})
	var verr validator.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"work_hours", "overtime_hours"}, []string{verr[0].Field, verr[1].Field})

	assert.True(t, f.repo.rows[rec.ID].WorkHours.Equal(rec.WorkHours))
	assert.Empty(t, f.audits.logs)
}

func TestUpdateAttendance_CheckOutBeforeCheckIn(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")
	hr := asRole(t, user.RoleHR)

	_, err := f.svc.UpdateAttendance(hr, attendance.UpdateAttendanceRequest{
		ID:      rec.ID,
		CheckIn: ptr("2024-03-07 09:00:00"),
	}, attendance.RequestMeta{})
	var verr validator.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "check_out", verr[0].Field)

	stored := f.repo.rows[rec.ID]
	require.NotNil(t, stored.CheckIn)
	require.NotNil(t, stored.CheckOut)
	assert.True(t, stored.CheckIn.Equal(*rec.CheckIn))
	assert.True(t, stored.CheckOut.Equal(*rec.CheckOut))
	assert.Empty(t, f.audits.logs)

	// A bare clock before check_in still reads as the next morning.
	resp, err := f.svc.UpdateAttendance(hr, attendance.UpdateAttendanceRequest{
		ID:       rec.ID,
		CheckOut: ptr("01:00"),
	}, attendance.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 16.0, resp.TotalHours)
}

func TestUpdateAttendance_Errors(t *testing.T) {
	f := newFixture(t)
	first := seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")
	seedRecord(t, f, anaID, "2024-03-05", "09:00", "17:00")

	_, err := f.svc.UpdateAttendance(asEmployee(t, anaID), attendance.UpdateAttendanceRequest{
		ID: first.ID, Status: ptr("late"),
	}, attendance.RequestMeta{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	hr := asRole(t, user.RoleHR)
	_, err = f.svc.UpdateAttendance(hr, attendance.UpdateAttendanceRequest{
		ID: first.ID, Date: ptr("2024-03-05"),
	}, attendance.RequestMeta{})
	assert.ErrorIs(t, err, attendance.ErrDuplicateAttendance)

	_, err = f.svc.UpdateAttendance(hr, attendance.UpdateAttendanceRequest{
		ID: uuid.NewString(), Status: ptr("late"),
	}, attendance.RequestMeta{})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	_, err = f.svc.UpdateAttendance(hr, attendance.UpdateAttendanceRequest{
		ID: first.ID, CheckIn: ptr(""),
	}, attendance.RequestMeta{})
	var verr validator.ValidationErrors
	assert.ErrorAs(t, err, &verr)

	assert.Empty(t, f.audits.logs)
}

func TestUpdateAttendance_NoChangeSkipsAudit(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")

	_, err := f.svc.UpdateAttendance(asRole(t, user.RoleHR), attendance.UpdateAttendanceRequest{
		ID: rec.ID, Status: ptr("present"),
	}, attendance.RequestMeta{})
	require.NoError(t, err)
	assert.Empty(t, f.audits.logs)
}

func TestDeleteAttendance(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")

	err := f.svc.DeleteAttendance(asRole(t, user.RoleHR), rec.ID, attendance.RequestMeta{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	admin := asRole(t, user.RoleAdmin)
	require.NoError(t, f.svc.DeleteAttendance(admin, rec.ID, attendance.RequestMeta{IP: "10.0.0.9"}))
	assert.Empty(t, f.repo.rows)

	require.Len(t, f.audits.logs, 1)
	assert.Equal(t, audit.ActionAttendanceDeleted, f.audits.logs[0].Action)
	assert.Equal(t, "present", f.audits.logs[0].Changes["status"].Old)
	assert.Nil(t, f.audits.logs[0].Changes["status"].New)

	assert.ErrorIs(t, f.svc.DeleteAttendance(admin, rec.ID, attendance.RequestMeta{}), attendance.ErrAttendanceNotFound)
	assert.ErrorIs(t, f.svc.DeleteAttendance(admin, "not-a-uuid", attendance.RequestMeta{}), attendance.ErrAttendanceNotFound)
}

// ---- reads ----

func TestGetAttendance_Access(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")

	_, err := f.svc.GetAttendance(asEmployee(t, anaID), rec.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetAttendance(asEmployee(t, budiID), rec.ID)
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	_, err = f.svc.GetAttendance(asRole(t, user.RoleManager), rec.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetAttendance(asRole(t, user.RoleManager), "abc")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestListAttendance_RecomputesOnRead(t *testing.T) {
	f := newFixture(t)
	rec := seedRecord(t, f, anaID, "2024-03-04", "09:00", "18:30")

	// Stale stored hours are ignored in favour of the raw instants.
	stale := f.repo.rows[rec.ID]
	stale.WorkHours = decimal.NewFromInt(2)
	stale.OvertimeHours = decimal.Zero
	f.repo.rows[rec.ID] = stale

	resp, err := f.svc.ListAttendance(asEmployee(t, anaID), attendance.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Attendances, 1)
	assert.Equal(t, 8.0, resp.Attendances[0].WorkHours)
	assert.Equal(t, 1.5, resp.Attendances[0].OvertimeHours)
	assert.Equal(t, "1-1 of 1", resp.Showing)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestListAttendance_ScopedToOwnEmployee(t *testing.T) {
	f := newFixture(t)
	seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")
	seedRecord(t, f, budiID, "2024-03-04", "09:00", "17:00")

	resp, err := f.svc.ListAttendance(asEmployee(t, budiID), attendance.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Attendances, 1)
	assert.Equal(t, budiID, resp.Attendances[0].EmployeeID)

	_, err = f.svc.ListAttendance(asEmployee(t, budiID), attendance.AttendanceFilter{EmployeeID: ptr(anaID)})
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	_, err = f.svc.ListAttendance(withIdentity(t, user.Identity{UserID: uuid.NewString(), Role: user.RoleEmployee}), attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, attendance.ErrEmployeeRequired)

	all, err := f.svc.ListAttendance(asRole(t, user.RoleManager), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
}

func TestListTimekeeping_Summary(t *testing.T) {
	f := newFixture(t)
	seedRecord(t, f, anaID, "2024-03-04", "09:00", "18:30")
	seedRecord(t, f, budiID, "2024-03-04", "09:00", "13:00")
	_, err := f.svc.MarkAbsent(context.Background(), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	resp, err := f.svc.ListTimekeeping(asRole(t, user.RoleHR), attendance.AttendanceFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(4), resp.TotalCount)
	assert.Equal(t, 12.0, resp.Summary.TotalWorkHours)
	assert.Equal(t, 1.5, resp.Summary.TotalOvertimeHours)
	assert.Equal(t, 12.0, resp.Summary.TotalHours)
	assert.Equal(t, 2, resp.Summary.Present)
	assert.Equal(t, 2, resp.Summary.Absent)

	_, err = f.svc.ListTimekeeping(asEmployee(t, anaID), attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	_, err = f.svc.ListTimekeeping(asRole(t, user.RoleHR), attendance.AttendanceFilter{Limit: 500})
	var verr validator.ValidationErrors
	assert.ErrorAs(t, err, &verr)
}

func TestMarkAbsent_Idempotent(t *testing.T) {
	f := newFixture(t)
	seedRecord(t, f, anaID, "2024-03-04", "09:00", "17:00")
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	n, err := f.svc.MarkAbsent(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = f.svc.MarkAbsent(context.Background(), day)
	require.NoError(t, err)
	assert.Zero(t, n)

	absent, ok := f.repo.find(budiID, day)
	require.True(t, ok)
	assert.Equal(t, attendance.StatusAbsent, absent.Status)
	_, ok = f.repo.find(goneID, day)
	assert.False(t, ok, fmt.Sprintf("inactive employee %s must not be marked", goneID))
	_, ok = f.repo.find(joinerID, day)
	assert.False(t, ok, "employee hired after the day must not be marked")

	hired := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	n, err = f.svc.MarkAbsent(context.Background(), hired)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	_, ok = f.repo.find(joinerID, hired)
	assert.True(t, ok)
}
