package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusPartial Status = "partial"
)

var validStatuses = []string{string(StatusPresent), string(StatusAbsent), string(StatusLate), string(StatusPartial)}

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusPartial:
		return true
	}
	return false
}

// Attendance is one employee's record for one calendar day.
type Attendance struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	CheckIn       *time.Time
	CheckOut      *time.Time
	WorkHours     decimal.Decimal
	OvertimeHours decimal.Decimal
	TotalHours    decimal.Decimal
	Status        Status
	Note          *string

	CheckInLocation   *string
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckInIP         *string
	CheckInDevice     *string
	CheckOutLocation  *string
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckOutIP        *string
	CheckOutDevice    *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO / Join
	EmployeeName *string
	EmployeeCode *string
	Department   *string
}

// IsOpen reports whether the record has a check-in without a check-out.
func (a *Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// EventMeta is the client metadata captured for a check-in or check-out.
type EventMeta struct {
	Location  *string
	Latitude  *float64
	Longitude *float64
	IP        *string
	Device    *string
}

// ApplyCheckIn copies m onto the check-in columns.
func (a *Attendance) ApplyCheckIn(m EventMeta) {
	a.CheckInLocation = m.Location
	a.CheckInLatitude = m.Latitude
	a.CheckInLongitude = m.Longitude
	a.CheckInIP = m.IP
	a.CheckInDevice = m.Device
}

// ApplyCheckOut copies m onto the check-out columns.
func (a *Attendance) ApplyCheckOut(m EventMeta) {
	a.CheckOutLocation = m.Location
	a.CheckOutLatitude = m.Latitude
	a.CheckOutLongitude = m.Longitude
	a.CheckOutIP = m.IP
	a.CheckOutDevice = m.Device
}
