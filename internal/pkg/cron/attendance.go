package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
)

const (
	autoClockOutInterval = 15 * time.Minute
	markAbsentInterval   = time.Hour
)

// AttendanceJobs closes forgotten sessions and fills in absences. Both
// service calls are idempotent, so the jobs simply run on a short interval.
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService) *AttendanceJobs {
	return &AttendanceJobs{attendanceService: attendanceService}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_clock_out", autoClockOutInterval, j.AutoClockOut)
	scheduler.AddJob("mark_absent", markAbsentInterval, j.MarkAbsent)
}

func (j *AttendanceJobs) AutoClockOut(ctx context.Context) error {
	closed, err := j.attendanceService.AutoClockOut(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("Cron: auto clocked out open attendance", "count", closed)
	}
	return nil
}

func (j *AttendanceJobs) MarkAbsent(ctx context.Context) error {
	marked, err := j.attendanceService.MarkAbsent(ctx)
	if err != nil {
		return err
	}
	if marked > 0 {
		slog.Info("Cron: filled in missing attendance", "count", marked)
	}
	return nil
}
