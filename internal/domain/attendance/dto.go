package attendance

import (
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/clientinfo"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/worktime"
)

const maxNoteLength = 500

// ========================================
// CHECK-IN / CHECK-OUT
// ========================================

type CheckInRequest struct {
	EmployeeID *string                `json:"employee_id,omitempty"`
	Note       *string                `json:"note,omitempty"`
	Latitude   *float64               `json:"latitude,omitempty"`
	Longitude  *float64               `json:"longitude,omitempty"`
	DeviceInfo *clientinfo.DeviceInfo `json:"device_info,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	return validateEvent(r.EmployeeID, r.Note, r.Latitude, r.Longitude)
}

type CheckOutRequest struct {
	EmployeeID *string                `json:"employee_id,omitempty"`
	Note       *string                `json:"note,omitempty"`
	Latitude   *float64               `json:"latitude,omitempty"`
	Longitude  *float64               `json:"longitude,omitempty"`
	DeviceInfo *clientinfo.DeviceInfo `json:"device_info,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	return validateEvent(r.EmployeeID, r.Note, r.Latitude, r.Longitude)
}

func validateEvent(employeeID, note *string, lat, lng *float64) error {
	var errs validator.ValidationErrors

	if employeeID != nil && !validator.IsEmpty(*employeeID) && !validator.IsValidUUID(*employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if note != nil && len(*note) > maxNoteLength {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		})
	}

	if (lat == nil) != (lng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be provided together",
		})
	}

	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if lng != nil && !validator.IsValidLongitude(*lng) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RequestMeta carries transport details the handler extracts from the request.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// ========================================
// CORRECTION (REGULARIZATION)
// ========================================

// UpdateAttendanceRequest is a partial correction. Nil fields are left as is;
// an empty check_in or check_out clears it.
type UpdateAttendanceRequest struct {
	ID            string   `json:"-"`
	Date          *string  `json:"date,omitempty"`      // YYYY-MM-DD
	CheckIn       *string  `json:"check_in,omitempty"`  // HH:MM[:SS] or full datetime
	CheckOut      *string  `json:"check_out,omitempty"` // HH:MM[:SS] or full datetime
	Status        *string  `json:"status,omitempty"`
	Note          *string  `json:"note,omitempty"`
	WorkHours     *float64 `json:"work_hours,omitempty"`
	OvertimeHours *float64 `json:"overtime_hours,omitempty"`
	TotalHours    *float64 `json:"total_hours,omitempty"`

	CheckInLocation   *string  `json:"check_in_location,omitempty"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckInIP         *string  `json:"check_in_ip,omitempty"`
	CheckInDevice     *string  `json:"check_in_device,omitempty"`
	CheckOutLocation  *string  `json:"check_out_location,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	CheckOutIP        *string  `json:"check_out_ip,omitempty"`
	CheckOutDevice    *string  `json:"check_out_device,omitempty"`
}

// HasTimeChange reports whether the correction touches check_in or check_out,
// which is what triggers hour recomputation.
func (r *UpdateAttendanceRequest) HasTimeChange() bool {
	return r.CheckIn != nil || r.CheckOut != nil
}

func (r *UpdateAttendanceRequest) isEmpty() bool {
	return r.Date == nil && r.CheckIn == nil && r.CheckOut == nil && r.Status == nil && r.Note == nil &&
		r.WorkHours == nil && r.OvertimeHours == nil && r.TotalHours == nil &&
		r.CheckInLocation == nil && r.CheckInLatitude == nil && r.CheckInLongitude == nil &&
		r.CheckInIP == nil && r.CheckInDevice == nil &&
		r.CheckOutLocation == nil && r.CheckOutLatitude == nil && r.CheckOutLongitude == nil &&
		r.CheckOutIP == nil && r.CheckOutDevice == nil
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.isEmpty() {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one field must be provided",
		})
	}

	if r.Date != nil {
		if _, valid := validator.IsValidDate(*r.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	errs = append(errs, validateTimeField("check_in", r.CheckIn)...)
	errs = append(errs, validateTimeField("check_out", r.CheckOut)...)

	if r.CheckIn != nil && strings.TrimSpace(*r.CheckIn) == "" && r.CheckOut != nil && strings.TrimSpace(*r.CheckOut) != "" {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in",
			Message: "check_in cannot be cleared while setting check_out",
		})
	}

	if r.Status != nil && !Status(strings.ToLower(*r.Status)).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(validStatuses, ", "),
		})
	}

	if r.Note != nil && len(*r.Note) > maxNoteLength {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		})
	}

	for field, v := range map[string]*float64{
		"work_hours":     r.WorkHours,
		"overtime_hours": r.OvertimeHours,
		"total_hours":    r.TotalHours,
	} {
		if v != nil && (*v < 0 || *v > 24) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be between 0 and 24",
			})
		}
	}

	if r.CheckInLatitude != nil && !validator.IsValidLatitude(*r.CheckInLatitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_latitude",
			Message: "check_in_latitude must be between -90 and 90",
		})
	}

	if r.CheckInLongitude != nil && !validator.IsValidLongitude(*r.CheckInLongitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_longitude",
			Message: "check_in_longitude must be between -180 and 180",
		})
	}

	if r.CheckOutLatitude != nil && !validator.IsValidLatitude(*r.CheckOutLatitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out_latitude",
			Message: "check_out_latitude must be between -90 and 90",
		})
	}

	if r.CheckOutLongitude != nil && !validator.IsValidLongitude(*r.CheckOutLongitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out_longitude",
			Message: "check_out_longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateTimeField(field string, value *string) validator.ValidationErrors {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	if _, err := worktime.Parse(*value); err != nil {
		return validator.ValidationErrors{{
			Field:   field,
			Message: field + " must be HH:MM[:SS] or YYYY-MM-DD HH:MM[:SS]",
		}}
	}
	return nil
}

// ========================================
// LISTING
// ========================================

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID   *string `json:"employee_id,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"` // timekeeping only
	Department   *string `json:"department,omitempty"`    // timekeeping only
	Date         *string `json:"date,omitempty"`          // YYYY-MM-DD
	StartDate    *string `json:"start_date,omitempty"`    // YYYY-MM-DD
	EndDate      *string `json:"end_date,omitempty"`      // YYYY-MM-DD
	Status       *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, check_in, check_out, status, work_hours
	SortOrder string `json:"sort_order"` // asc, desc
}

var validSortFields = []string{"date", "employee_name", "check_in", "check_out", "status", "work_hours"}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}
	if f.Page > validator.MaxPage {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must not exceed " + strconv.Itoa(validator.MaxPage),
		})
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	// Status validation
	if f.Status != nil && *f.Status != "" && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(validStatuses, ", "),
		})
	}

	// Date validation
	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	startOK, endOK := false, false
	if f.StartDate != nil && *f.StartDate != "" {
		if _, startOK = validator.IsValidDate(*f.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, endOK = validator.IsValidDate(*f.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	// YYYY-MM-DD compares lexically in date order.
	if startOK && endOK && *f.EndDate < *f.StartDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	// Sort validation
	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(validSortFields, ", "),
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

type AttendanceResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  *string `json:"employee_name,omitempty"`
	EmployeeCode  *string `json:"employee_code,omitempty"`
	Department    *string `json:"department,omitempty"`
	Date          string  `json:"date"`
	CheckIn       *string `json:"check_in"`
	CheckOut      *string `json:"check_out"`
	WorkHours     float64 `json:"work_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	TotalHours    float64 `json:"total_hours"`
	Status        string  `json:"status"`
	Note          *string `json:"note,omitempty"`

	CheckInLocation   *string  `json:"check_in_location,omitempty"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckInIP         *string  `json:"check_in_ip,omitempty"`
	CheckInDevice     *string  `json:"check_in_device,omitempty"`
	CheckOutLocation  *string  `json:"check_out_location,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	CheckOutIP        *string  `json:"check_out_ip,omitempty"`
	CheckOutDevice    *string  `json:"check_out_device,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// TimekeepingSummary aggregates the rows of the current page.
type TimekeepingSummary struct {
	TotalWorkHours     float64 `json:"total_work_hours"`
	TotalOvertimeHours float64 `json:"total_overtime_hours"`
	TotalHours         float64 `json:"total_hours"`
	Present            int     `json:"present"`
	Absent             int     `json:"absent"`
	Late               int     `json:"late"`
	Partial            int     `json:"partial"`
}

type TimekeepingResponse struct {
	ListAttendanceResponse
	Summary TimekeepingSummary `json:"summary"`
}
