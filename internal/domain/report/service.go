package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// ExportAttendance renders the attendance records of a date range as CSV or XLSX
	ExportAttendance(ctx context.Context, req AttendanceExportRequest) (ExportFile, error)
}
