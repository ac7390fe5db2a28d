package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance day states derived from check-in/check-out presence.
const (
	AttendanceNotStarted = "NOT_STARTED"
	AttendanceWorking    = "WORKING"
	AttendanceCompleted  = "COMPLETED"
)

// Punctuality classifications used by reports.
const (
	PunctualityOnTime  = "PUNTUAL"
	PunctualityLate    = "TARDE"
	PunctualityAbsent  = "AUSENTE"
	PunctualityNoCheck = "SIN_MARCA"
)

// Attendance is one clock record per employee per calendar day. The date is
// normalized to midnight; uniqueness on (employee_id, date) is enforced by
// the storage layer so racing clock-ins cannot both succeed.
type Attendance struct {
	AttendanceID uuid.UUID
	EmployeeID   uuid.UUID
	TenantID     uuid.UUID
	Date         time.Time // midnight, local policy timezone
	CheckIn      *time.Time
	CheckOut     *time.Time
	CreatedAt    time.Time
}

// Status derives the day state from which marks are present.
func (a *Attendance) Status() string {
	if a == nil {
		return AttendanceNotStarted
	}
	if a.CheckOut != nil {
		return AttendanceCompleted
	}
	return AttendanceWorking
}

// NormalizeDate truncates t to midnight in its own location. Both sides of
// any date equality comparison go through this.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
