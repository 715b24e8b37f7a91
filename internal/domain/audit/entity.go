package audit

import "time"

type Action string

const (
	ActionAttendanceCorrected Action = "attendance.corrected"
	ActionAttendanceDeleted   Action = "attendance.deleted"
)

const EntityAttendance = "attendance"

// Change is the before/after value of a single field.
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}

type Log struct {
	ID          string
	ActorUserID *string
	Action      Action
	EntityType  string
	EntityID    string
	Changes     map[string]Change
	IPAddress   *string
	CreatedAt   time.Time
}
