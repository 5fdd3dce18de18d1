package attendance

import (
	"fmt"
	"time"
)

// TotalBreak sums closed breaks only.
func TotalBreak(breaks []BreakInterval) time.Duration {
	var total time.Duration
	for _, b := range breaks {
		if b.BreakOut == nil {
			continue
		}
		if d := b.BreakOut.Sub(b.BreakIn); d > 0 {
			total += d
		}
	}
	return total
}

// WorkedDuration is (clockOut - clockIn) - closed breaks, never negative.
func WorkedDuration(clockIn, clockOut time.Time, breaks []BreakInterval) time.Duration {
	d := clockOut.Sub(clockIn) - TotalBreak(breaks)
	if d < 0 {
		return 0
	}
	return d
}

// SplitOvertime caps the regular part at required and returns the excess as overtime.
func SplitOvertime(worked, required time.Duration) (regular, overtime time.Duration) {
	if worked <= required {
		return worked, 0
	}
	return required, worked - required
}

// FormatDuration renders d as "8h 30m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int(d / time.Minute)
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// FormatClock renders t in loc as HH:MM, or "-" when unset.
func FormatClock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("15:04")
}
