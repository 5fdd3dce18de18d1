package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusLeave   Status = "Leave"
	StatusWeekend Status = "Weekend"
	StatusAbsent  Status = "Absent"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusLeave, StatusWeekend, StatusAbsent:
		return true
	}
	return false
}

// DayState is the position of a user-day in the attendance state machine.
type DayState string

const (
	StateNotClockedIn DayState = "NotClockedIn"
	StateClockedIn    DayState = "ClockedIn"
	StateOnBreak      DayState = "OnBreak"
	StateClockedOut   DayState = "ClockedOut"
)

// OvertimeState tracks the after-hours sub-machine, which is independent of
// the day's attendance record.
type OvertimeState string

const (
	OvertimeNotStarted OvertimeState = "NotStarted"
	OvertimeActive     OvertimeState = "OvertimeActive"
	OvertimeEnded      OvertimeState = "OvertimeEnded"
)

// Record is one user's attendance for one calendar date.
type Record struct {
	ID             string
	UserID         string
	Date           time.Time // civil date, midnight UTC
	ClockIn        *time.Time
	ClockOut       *time.Time
	Status         Status
	AutoClockedOut bool
	Breaks         []BreakInterval
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	UserName *string
}

type BreakInterval struct {
	ID                 string
	AttendanceRecordID string
	BreakIn            time.Time
	BreakOut           *time.Time
}

type OvertimeRecord struct {
	ID        string
	UserID    string
	Date      time.Time
	ClockIn   time.Time
	ClockOut  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	UserName *string
}

// State derives the day state from the record. A nil record is NotClockedIn.
func (r *Record) State() DayState {
	if r == nil || r.ClockIn == nil {
		return StateNotClockedIn
	}
	if r.ClockOut != nil {
		return StateClockedOut
	}
	if r.OpenBreak() != nil {
		return StateOnBreak
	}
	return StateClockedIn
}

// OpenBreak returns the break without a breakOut, if any. At most one may exist.
func (r *Record) OpenBreak() *BreakInterval {
	if r == nil {
		return nil
	}
	for i := range r.Breaks {
		if r.Breaks[i].BreakOut == nil {
			return &r.Breaks[i]
		}
	}
	return nil
}

func (o *OvertimeRecord) State() OvertimeState {
	if o == nil {
		return OvertimeNotStarted
	}
	if o.ClockOut == nil {
		return OvertimeActive
	}
	return OvertimeEnded
}
