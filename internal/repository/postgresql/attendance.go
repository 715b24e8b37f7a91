package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
)

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.check_in, a.check_out,
	a.work_hours, a.overtime_hours, a.total_hours, a.status, a.note,
	a.check_in_location, a.check_in_latitude, a.check_in_longitude, a.check_in_ip, a.check_in_device,
	a.check_out_location, a.check_out_latitude, a.check_out_longitude, a.check_out_ip, a.check_out_device,
	a.created_at, a.updated_at,
	e.full_name, e.employee_code, e.department`

var attendanceSortColumns = map[string]string{
	"date":          "a.date",
	"employee_name": "e.full_name",
	"check_in":      "a.check_in",
	"check_out":     "a.check_out",
	"status":        "a.status",
	"work_hours":    "a.work_hours",
}

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut,
		&att.WorkHours, &att.OvertimeHours, &att.TotalHours, &att.Status, &att.Note,
		&att.CheckInLocation, &att.CheckInLatitude, &att.CheckInLongitude, &att.CheckInIP, &att.CheckInDevice,
		&att.CheckOutLocation, &att.CheckOutLatitude, &att.CheckOutLongitude, &att.CheckOutIP, &att.CheckOutDevice,
		&att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.EmployeeCode, &att.Department,
	)
	return att, err
}

// CreateCheckIn implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateCheckIn(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if newAttendance.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		newAttendance.ID = id.String()
	}

	// The unique (employee_id, date) constraint decides the race between
	// concurrent check-ins; the loser gets no row back.
	query := `
		INSERT INTO attendances (
			id, employee_id, date, check_in, status, note,
			check_in_location, check_in_latitude, check_in_longitude, check_in_ip, check_in_device
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		ON CONFLICT ON CONSTRAINT attendances_employee_date_key DO NOTHING
		RETURNING work_hours, overtime_hours, total_hours, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.EmployeeID,
		newAttendance.Date,
		newAttendance.CheckIn,
		newAttendance.Status,
		newAttendance.Note,
		newAttendance.CheckInLocation,
		newAttendance.CheckInLatitude,
		newAttendance.CheckInLongitude,
		newAttendance.CheckInIP,
		newAttendance.CheckInDevice,
	).Scan(&newAttendance.WorkHours, &newAttendance.OvertimeHours, &newAttendance.TotalHours,
		&newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	return att, nil
}

// LockByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1
		FOR UPDATE OF a
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to lock attendance: %w", err)
	}

	return att, nil
}

// LockByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1
		  AND a.date = $2
		FOR UPDATE OF a
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to lock attendance by employee and date: %w", err)
	}

	return att, nil
}

// UpdateCheckOut implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateCheckOut(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_out = $2,
			work_hours = $3,
			overtime_hours = $4,
			total_hours = $5,
			status = $6,
			note = $7,
			check_out_location = $8,
			check_out_latitude = $9,
			check_out_longitude = $10,
			check_out_ip = $11,
			check_out_device = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	var updatedAt time.Time
	err := q.QueryRow(ctx, query,
		att.ID,
		att.CheckOut,
		att.WorkHours,
		att.OvertimeHours,
		att.TotalHours,
		att.Status,
		att.Note,
		att.CheckOutLocation,
		att.CheckOutLatitude,
		att.CheckOutLongitude,
		att.CheckOutIP,
		att.CheckOutDevice,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update check-out: %w", err)
	}

	return nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			date = $2,
			check_in = $3,
			check_out = $4,
			work_hours = $5,
			overtime_hours = $6,
			total_hours = $7,
			status = $8,
			note = $9,
			check_in_location = $10,
			check_in_latitude = $11,
			check_in_longitude = $12,
			check_in_ip = $13,
			check_in_device = $14,
			check_out_location = $15,
			check_out_latitude = $16,
			check_out_longitude = $17,
			check_out_ip = $18,
			check_out_device = $19,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		att.ID,
		att.Date,
		att.CheckIn,
		att.CheckOut,
		att.WorkHours,
		att.OvertimeHours,
		att.TotalHours,
		att.Status,
		att.Note,
		att.CheckInLocation,
		att.CheckInLatitude,
		att.CheckInLongitude,
		att.CheckInIP,
		att.CheckInDevice,
		att.CheckOutLocation,
		att.CheckOutLatitude,
		att.CheckOutLongitude,
		att.CheckOutIP,
		att.CheckOutDevice,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return attendance.ErrDuplicateAttendance
			case "23514": // check_violation
				if pgErr.ConstraintName == "attendances_check_out_after_check_in" {
					return attendance.ErrCheckOutBeforeCheckIn
				}
			}
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	var w whereBuilder
	w.addIf("a.employee_id = ?", filter.EmployeeID)
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		w.add("e.full_name ILIKE ?", likePattern(*filter.EmployeeName))
	}
	if filter.Department != nil && *filter.Department != "" {
		w.add("e.department ILIKE ?", likePattern(*filter.Department))
	}
	w.addIf("a.date = ?::date", filter.Date)
	w.addIf("a.date >= ?::date", filter.StartDate)
	w.addIf("a.date <= ?::date", filter.EndDate)
	w.addIf("a.status = ?", filter.Status)

	where := w.clause()
	countArgs := append([]interface{}(nil), w.args...)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	order := orderBy(attendanceSortColumns, filter.SortBy, filter.SortOrder, "a.date")

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s, a.id
		LIMIT %s OFFSET %s
	`, attendanceColumns, where, order, w.next(limit), w.next((page-1)*limit))

	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE ` + where

	var (
		total       int64
		attendances []attendance.Attendance
	)

	count := func(ctx context.Context) error {
		if err := GetQuerier(ctx, a.db).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count attendances: %w", err)
		}
		return nil
	}

	fetch := func(ctx context.Context) error {
		rows, err := GetQuerier(ctx, a.db).Query(ctx, selectQuery, w.args...)
		if err != nil {
			return fmt.Errorf("failed to query attendances: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			att, err := scanAttendance(rows)
			if err != nil {
				return fmt.Errorf("failed to scan attendance: %w", err)
			}
			attendances = append(attendances, att)
		}
		return rows.Err()
	}

	// A transaction is a single connection, so the two queries only run
	// concurrently against the pool.
	if _, inTx := ctx.Value(txKey{}).(pgx.Tx); inTx {
		if err := count(ctx); err != nil {
			return nil, 0, err
		}
		if err := fetch(ctx); err != nil {
			return nil, 0, err
		}
		return attendances, total, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return count(gCtx) })
	g.Go(func() error { return fetch(gCtx) })
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return attendances, total, nil
}

// CreateAbsences implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateAbsences(ctx context.Context, employeeIDs []string, date time.Time) (int64, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}

	q := GetQuerier(ctx, a.db)

	ids := make([]string, len(employeeIDs))
	for i := range employeeIDs {
		id, err := uuid.NewV7()
		if err != nil {
			return 0, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		ids[i] = id.String()
	}

	query := `
		INSERT INTO attendances (id, employee_id, date, status)
		SELECT t.id::uuid, t.employee_id::uuid, $1::date, $4::varchar
		FROM unnest($2::text[], $3::text[]) AS t(id, employee_id)
		ON CONFLICT ON CONSTRAINT attendances_employee_date_key DO NOTHING
	`

	commandTag, err := q.Exec(ctx, query, date, ids, employeeIDs, attendance.StatusAbsent)
	if err != nil {
		return 0, fmt.Errorf("failed to create absences: %w", err)
	}

	return commandTag.RowsAffected(), nil
}
