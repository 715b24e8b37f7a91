package report

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

const MaxExportDays = 366

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ========================================
// ATTENDANCE EXPORT
// ========================================

type AttendanceExportRequest struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	EmployeeID *string `json:"employee_id,omitempty"`
	Format     Format  `json:"format"`

	// Set by Validate
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *AttendanceExportRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required in YYYY-MM-DD format",
		})
	}
	if startOK && endOK {
		switch {
		case end.Before(start):
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		case int(end.Sub(start).Hours()/24)+1 > MaxExportDays:
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "date range must not exceed 366 days",
			})
		}
	}

	if r.EmployeeID != nil && *r.EmployeeID != "" && !validator.IsValidUUID(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	r.Format = Format(strings.ToLower(string(r.Format)))
	if r.Format == "" {
		r.Format = FormatCSV
	}
	if r.Format != FormatCSV && r.Format != FormatXLSX {
		errs = append(errs, validator.ValidationError{
			Field:   "format",
			Message: "format must be one of: csv, xlsx",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Start, r.End = start, end
	return nil
}

// AttendanceRow is one exported line with hours recomputed from the raw times.
type AttendanceRow struct {
	Date           string
	EmployeeID     string
	EmployeeCode   string
	EmployeeName   string
	Department     string
	CheckIn        string
	CheckOut       string
	Status         string
	WorkHours      float64
	OvertimeHours  float64
	TotalHours     float64
	CheckInIP      string
	CheckInDevice  string
	CheckOutIP     string
	CheckOutDevice string
}

// EmployeeSummary aggregates an employee's rows over the export range.
type EmployeeSummary struct {
	EmployeeCode       string
	EmployeeName       string
	Department         string
	DaysPresent        int
	DaysAbsent         int
	DaysLate           int
	DaysPartial        int
	TotalWorkHours     float64
	TotalOvertimeHours float64
	TotalHours         float64
}

type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
