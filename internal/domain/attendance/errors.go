package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyClockedIn      = errors.New("you have already clocked in today")
	ErrClockInAfterOfficeEnd = errors.New("clock-in is closed after office end time")
	ErrNotClockedIn          = errors.New("you have not clocked in yet")
	ErrAlreadyClockedOut     = errors.New("you have already clocked out today")
	ErrAlreadyOnBreak        = errors.New("you are already on a break")
	ErrNotOnBreak            = errors.New("you are not on a break")

	ErrOvertimeNotAvailable   = errors.New("overtime can only start after office end time")
	ErrOvertimeAlreadyStarted = errors.New("overtime has already been recorded today")
	ErrOvertimeNotActive      = errors.New("no active overtime session")

	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrForbidden          = errors.New("you are not allowed to access this attendance record")
)
