package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	attendanceSheet = "Attendance"
	summarySheet    = "Summary"
)

var attendanceHeaders = []string{
	"Date", "Employee Code", "Employee Name", "Department",
	"Check In", "Check Out", "Status",
	"Work Hours", "Overtime Hours", "Total Hours",
	"Check In IP", "Check In Device", "Check Out IP", "Check Out Device",
}

var summaryHeaders = []string{
	"Employee Code", "Employee Name", "Department",
	"Present", "Absent", "Late", "Partial",
	"Work Hours", "Overtime Hours", "Total Hours",
}

func attendanceRecord(r report.AttendanceRow) []interface{} {
	return []interface{}{
		r.Date, r.EmployeeCode, r.EmployeeName, r.Department,
		r.CheckIn, r.CheckOut, r.Status,
		r.WorkHours, r.OvertimeHours, r.TotalHours,
		r.CheckInIP, r.CheckInDevice, r.CheckOutIP, r.CheckOutDevice,
	}
}

func writeCSV(rows []report.AttendanceRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(attendanceHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := make([]string, 0, len(attendanceHeaders))
		for _, v := range attendanceRecord(r) {
			switch v := v.(type) {
			case float64:
				record = append(record, strconv.FormatFloat(v, 'f', 2, 64))
			default:
				record = append(record, fmt.Sprint(v))
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(rows []report.AttendanceRow, summaries []report.EmployeeSummary, start, end time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet rather than leaving an empty "Sheet1".
	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeSheet(f, attendanceSheet, attendanceHeaders, headerStyle, len(rows), func(i int) []interface{} {
		return attendanceRecord(rows[i])
	}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, summarySheet, summaryHeaders, headerStyle, len(summaries), func(i int) []interface{} {
		s := summaries[i]
		return []interface{}{
			s.EmployeeCode, s.EmployeeName, s.Department,
			s.DaysPresent, s.DaysAbsent, s.DaysLate, s.DaysPartial,
			s.TotalWorkHours, s.TotalOvertimeHours, s.TotalHours,
		}
	}); err != nil {
		return nil, err
	}

	period := fmt.Sprintf("Period: %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	footer := len(summaries) + 3
	if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", footer), period); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(attendanceSheet, "A", "N", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "A", "J", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, headerStyle, n int, row func(i int) []interface{}) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		values := row(i)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
