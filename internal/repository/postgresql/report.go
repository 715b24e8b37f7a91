package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// ListAttendance retrieves every attendance row in the period, oldest first
func (r *reportRepositoryImpl) ListAttendance(ctx context.Context, start, end time.Time, employeeID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.add("a.date BETWEEN ?::date AND ?::date", start, end)
	w.addIf("a.employee_id = ?::uuid", employeeID)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE ` + w.clause() + `
		ORDER BY a.date, e.employee_code
	`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance report: %w", err)
	}
	defer rows.Close()

	var result []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance report row: %w", err)
		}
		result = append(result, att)
	}

	return result, rows.Err()
}
