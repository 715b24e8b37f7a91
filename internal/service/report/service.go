package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/worktime"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	policy     user.Policy
	calc       *worktime.Calculator
	loc        *time.Location
}

func NewReportService(reportRepo report.ReportRepository, policy user.Policy, calc *worktime.Calculator, loc *time.Location) report.ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		policy:     policy,
		calc:       calc,
		loc:        loc,
	}
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, req report.AttendanceExportRequest) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}

	id, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("%w: %v", user.ErrUnauthenticated, err)
	}
	if !s.policy.Allows(id, user.PermissionReportsView) {
		return report.ExportFile{}, user.ErrInsufficientPermissions
	}

	employeeID := req.EmployeeID
	if employeeID != nil && *employeeID == "" {
		employeeID = nil
	}

	records, err := s.reportRepo.ListAttendance(ctx, req.Start, req.End, employeeID)
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to get attendance report data: %w", err)
	}

	rows := s.buildRows(records)
	baseName := fmt.Sprintf("attendance_%s_%s", req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))

	switch req.Format {
	case report.FormatXLSX:
		content, err := writeXLSX(rows, summarize(rows), req.Start, req.End)
		if err != nil {
			return report.ExportFile{}, errors.Join(report.ErrReportGenerationFailed, err)
		}
		return report.ExportFile{FileName: baseName + ".xlsx", ContentType: contentTypeXLSX, Content: content}, nil
	default:
		content, err := writeCSV(rows)
		if err != nil {
			return report.ExportFile{}, errors.Join(report.ErrReportGenerationFailed, err)
		}
		return report.ExportFile{FileName: baseName + ".csv", ContentType: contentTypeCSV, Content: content}, nil
	}
}

// buildRows flattens records, recomputing hours from the raw instants.
func (s *ReportServiceImpl) buildRows(records []attendance.Attendance) []report.AttendanceRow {
	rows := make([]report.AttendanceRow, 0, len(records))
	for _, att := range records {
		workHours, _ := att.WorkHours.Float64()
		overtimeHours, _ := att.OvertimeHours.Float64()
		totalHours, _ := att.TotalHours.Float64()
		if att.CheckIn != nil && att.CheckOut != nil {
			bd := s.calc.Compute(att.CheckIn, att.CheckOut)
			workHours, overtimeHours, totalHours = bd.WorkHours, bd.OvertimeHours, bd.TotalHours
		}

		rows = append(rows, report.AttendanceRow{
			Date:           att.Date.Format("2006-01-02"),
			EmployeeID:     att.EmployeeID,
			EmployeeCode:   deref(att.EmployeeCode),
			EmployeeName:   deref(att.EmployeeName),
			Department:     deref(att.Department),
			CheckIn:        s.formatTime(att.CheckIn),
			CheckOut:       s.formatTime(att.CheckOut),
			Status:         string(att.Status),
			WorkHours:      worktime.RoundFloat(workHours),
			OvertimeHours:  worktime.RoundFloat(overtimeHours),
			TotalHours:     worktime.RoundFloat(totalHours),
			CheckInIP:      deref(att.CheckInIP),
			CheckInDevice:  deref(att.CheckInDevice),
			CheckOutIP:     deref(att.CheckOutIP),
			CheckOutDevice: deref(att.CheckOutDevice),
		})
	}
	return rows
}

// summarize aggregates rows per employee, ordered by employee code.
func summarize(rows []report.AttendanceRow) []report.EmployeeSummary {
	byEmployee := make(map[string]*report.EmployeeSummary)
	var order []string

	for _, r := range rows {
		sum, ok := byEmployee[r.EmployeeID]
		if !ok {
			sum = &report.EmployeeSummary{
				EmployeeCode: r.EmployeeCode,
				EmployeeName: r.EmployeeName,
				Department:   r.Department,
			}
			byEmployee[r.EmployeeID] = sum
			order = append(order, r.EmployeeID)
		}

		switch attendance.Status(r.Status) {
		case attendance.StatusPresent:
			sum.DaysPresent++
		case attendance.StatusAbsent:
			sum.DaysAbsent++
		case attendance.StatusLate:
			sum.DaysLate++
		case attendance.StatusPartial:
			sum.DaysPartial++
		}
		sum.TotalWorkHours += r.WorkHours
		sum.TotalOvertimeHours += r.OvertimeHours
		sum.TotalHours += r.TotalHours
	}

	summaries := make([]report.EmployeeSummary, 0, len(order))
	for _, id := range order {
		sum := byEmployee[id]
		sum.TotalWorkHours = worktime.RoundFloat(sum.TotalWorkHours)
		sum.TotalOvertimeHours = worktime.RoundFloat(sum.TotalOvertimeHours)
		sum.TotalHours = worktime.RoundFloat(sum.TotalHours)
		summaries = append(summaries, *sum)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].EmployeeCode < summaries[j].EmployeeCode
	})
	return summaries
}

func (s *ReportServiceImpl) formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("2006-01-02 15:04:05")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
