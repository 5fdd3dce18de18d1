package attendance

import (
	"context"
	"time"
)

// AttendanceRepository persists attendance records and their breaks.
// Records returned by Get* and List methods carry their breaks.
type AttendanceRepository interface {
	// Create inserts a record. A second record for the same (user, date)
	// fails with ErrAlreadyClockedIn.
	Create(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// GetByUserAndDate returns nil when no record exists.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Record, error)

	// Update writes clock-out, status and the auto clock-out flag.
	Update(ctx context.Context, record Record) error

	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	// ListOpen returns records dated on or before date that have a clock-in but no clock-out.
	ListOpen(ctx context.Context, date time.Time) ([]Record, error)

	// ListUserIDsByDate returns the users that already have a record on date.
	ListUserIDsByDate(ctx context.Context, date time.Time) ([]string, error)

	// LatestMarkedDate returns the most recent date before the given one that
	// holds a record written by MarkAbsent, or nil when there is none.
	LatestMarkedDate(ctx context.Context, before time.Time) (*time.Time, error)

	// CreateBreak opens a break. A second open break on the same record
	// fails with ErrAlreadyOnBreak.
	CreateBreak(ctx context.Context, b BreakInterval) (BreakInterval, error)

	CloseBreak(ctx context.Context, breakID string, at time.Time) error
}

type OvertimeRepository interface {
	// Create fails with ErrOvertimeAlreadyStarted when the user already has a session on that date.
	Create(ctx context.Context, record OvertimeRecord) (OvertimeRecord, error)

	// GetByUserAndDate returns nil when no session exists.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*OvertimeRecord, error)

	Update(ctx context.Context, record OvertimeRecord) error

	List(ctx context.Context, filter OvertimeFilter) ([]OvertimeRecord, int64, error)
}

// LeaveCalendar answers whether a user is on approved leave on a date.
type LeaveCalendar interface {
	UsersOnLeave(ctx context.Context, date time.Time) ([]string, error)
}
