package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	ExportAttendance(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ExportAttendance handles GET /reports/attendance/export
func (h *reportHandlerImpl) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := report.AttendanceExportRequest{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Format:    report.Format(q.Get("format")),
	}
	if employeeID := q.Get("employee_id"); employeeID != "" {
		req.EmployeeID = &employeeID
	}

	file, err := h.reportService.ExportAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.FileName, file.ContentType, file.Content)
}
