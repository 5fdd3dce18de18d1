package attendance

import (
	"context"
)

// AttendanceService drives the per-day attendance state machine.
type AttendanceService interface {
	ClockIn(ctx context.Context, userID string) (AttendanceResponse, error)
	BreakIn(ctx context.Context, userID string) (AttendanceResponse, error)
	BreakOut(ctx context.Context, userID string) (AttendanceResponse, error)
	ClockOut(ctx context.Context, userID string) (AttendanceResponse, error)

	StartOvertime(ctx context.Context, userID string) (OvertimeResponse, error)
	EndOvertime(ctx context.Context, userID string) (OvertimeResponse, error)

	// GetTodayStatus reports the current state and the actions now permitted.
	GetTodayStatus(ctx context.Context, userID string) (TodayStatusResponse, error)

	GetMyAttendance(ctx context.Context, userID string, filter AttendanceFilter) (ListAttendanceResponse, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	GetAttendance(ctx context.Context, requesterID string, isAdmin bool, id string) (AttendanceResponse, error)

	GetMyOvertime(ctx context.Context, userID string, filter OvertimeFilter) (ListOvertimeResponse, error)
	ListOvertime(ctx context.Context, filter OvertimeFilter) (ListOvertimeResponse, error)

	// AutoClockOut closes every open record whose office day has ended.
	AutoClockOut(ctx context.Context) (int, error)

	// MarkAbsent fills in Absent or Leave records for the previous working day.
	MarkAbsent(ctx context.Context) (int, error)
}
