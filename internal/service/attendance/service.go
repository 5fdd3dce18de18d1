package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	attendance.OvertimeRepository
	user.UserRepository
	leave    attendance.LeaveCalendar
	notifier notification.Service
	clock    clock.Clock
	policy   attendance.Policy
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	overtimeRepo attendance.OvertimeRepository,
	userRepo user.UserRepository,
	leave attendance.LeaveCalendar,
	notifier notification.Service,
	clk clock.Clock,
	policy attendance.Policy,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		OvertimeRepository:   overtimeRepo,
		UserRepository:       userRepo,
		leave:                leave,
		notifier:             notifier,
		clock:                clk,
		policy:               policy,
	}
}

func (s *AttendanceServiceImpl) toResponse(r attendance.Record) attendance.AttendanceResponse {
	return attendance.ToResponse(r, s.policy.RequiredDaily, s.policy.Location)
}

func (s *AttendanceServiceImpl) publish(userID string, data interface{}) {
	s.notifier.Publish(userID, notification.KindAttendance.EventName(), data)
}

// today loads the caller's record for the current office date, applying the
// automatic clock-out first when the office day is already over.
func (s *AttendanceServiceImpl) today(ctx context.Context, userID string, now time.Time) (*attendance.Record, error) {
	rec, err := s.AttendanceRepository.GetByUserAndDate(ctx, userID, s.policy.DateOf(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if rec != nil {
		if _, err := s.settle(ctx, rec, now); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// settle closes an open record at office end once now has passed it.
// It reports whether the record was changed.
func (s *AttendanceServiceImpl) settle(ctx context.Context, rec *attendance.Record, now time.Time) (bool, error) {
	if rec.ClockIn == nil || rec.ClockOut != nil {
		return false, nil
	}
	end := s.policy.OfficeEnd(rec.Date)
	if now.Before(end) {
		return false, nil
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if open := rec.OpenBreak(); open != nil {
			if err := s.AttendanceRepository.CloseBreak(ctx, open.ID, end); err != nil {
				return fmt.Errorf("failed to close break: %w", err)
			}
			open.BreakOut = &end
		}
		rec.ClockOut = &end
		rec.AutoClockedOut = true
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to auto clock out: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	slog.Info("Attendance auto clocked out", "attendance_id", rec.ID, "user_id", rec.UserID, "date", rec.Date.Format("2006-01-02"))
	s.publish(rec.UserID, s.toResponse(*rec))
	return true, nil
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	now := s.clock.Now()
	date := s.policy.DateOf(now)

	existing, err := s.AttendanceRepository.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	}
	if !now.Before(s.policy.OfficeEnd(date)) {
		return attendance.AttendanceResponse{}, attendance.ErrClockInAfterOfficeEnd
	}

	rec, err := s.AttendanceRepository.Create(ctx, attendance.Record{
		UserID:  userID,
		Date:    date,
		ClockIn: &now,
		Status:  s.policy.StatusAt(now),
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyClockedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	resp := s.toResponse(rec)
	s.publish(userID, resp)
	return resp, nil
}

// BreakIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) BreakIn(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	now := s.clock.Now()
	rec, err := s.today(ctx, userID, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	switch rec.State() {
	case attendance.StateNotClockedIn:
		return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
	case attendance.StateClockedOut:
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedOut
	case attendance.StateOnBreak:
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyOnBreak
	}

	b, err := s.AttendanceRepository.CreateBreak(ctx, attendance.BreakInterval{
		AttendanceRecordID: rec.ID,
		BreakIn:            now,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyOnBreak) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to start break: %w", err)
	}
	rec.Breaks = append(rec.Breaks, b)

	resp := s.toResponse(*rec)
	s.publish(userID, resp)
	return resp, nil
}

// BreakOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) BreakOut(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	now := s.clock.Now()
	rec, err := s.today(ctx, userID, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	switch rec.State() {
	case attendance.StateNotClockedIn:
		return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
	case attendance.StateClockedOut:
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedOut
	case attendance.StateClockedIn:
		return attendance.AttendanceResponse{}, attendance.ErrNotOnBreak
	}

	open := rec.OpenBreak()
	if err := s.AttendanceRepository.CloseBreak(ctx, open.ID, now); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to end break: %w", err)
	}
	open.BreakOut = &now

	resp := s.toResponse(*rec)
	s.publish(userID, resp)
	return resp, nil
}

// ClockOut implements attendance.AttendanceService. An open break is closed
// at the clock-out instant.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	now := s.clock.Now()
	rec, err := s.today(ctx, userID, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	switch rec.State() {
	case attendance.StateNotClockedIn:
		return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
	case attendance.StateClockedOut:
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedOut
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if open := rec.OpenBreak(); open != nil {
			if err := s.AttendanceRepository.CloseBreak(ctx, open.ID, now); err != nil {
				return fmt.Errorf("failed to close break: %w", err)
			}
			open.BreakOut = &now
		}
		rec.ClockOut = &now
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to clock out: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	resp := s.toResponse(*rec)
	s.publish(userID, resp)
	return resp, nil
}

// activeOvertime finds the running session, which may have started on the
// previous office date when it crosses midnight.
func (s *AttendanceServiceImpl) activeOvertime(ctx context.Context, userID string, now time.Time) (*attendance.OvertimeRecord, error) {
	date := s.policy.DateOf(now)
	for _, d := range []time.Time{date, date.AddDate(0, 0, -1)} {
		o, err := s.OvertimeRepository.GetByUserAndDate(ctx, userID, d)
		if err != nil {
			return nil, fmt.Errorf("failed to get overtime: %w", err)
		}
		if o != nil && o.State() == attendance.OvertimeActive {
			return o, nil
		}
	}
	return nil, nil
}

// StartOvertime implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartOvertime(ctx context.Context, userID string) (attendance.OvertimeResponse, error) {
	now := s.clock.Now()
	date := s.policy.DateOf(now)

	if now.Before(s.policy.OfficeEnd(date)) {
		return attendance.OvertimeResponse{}, attendance.ErrOvertimeNotAvailable
	}

	existing, err := s.OvertimeRepository.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return attendance.OvertimeResponse{}, fmt.Errorf("failed to get overtime: %w", err)
	}
	if existing != nil {
		return attendance.OvertimeResponse{}, attendance.ErrOvertimeAlreadyStarted
	}

	o, err := s.OvertimeRepository.Create(ctx, attendance.OvertimeRecord{
		UserID:  userID,
		Date:    date,
		ClockIn: now,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrOvertimeAlreadyStarted) {
			return attendance.OvertimeResponse{}, err
		}
		return attendance.OvertimeResponse{}, fmt.Errorf("failed to start overtime: %w", err)
	}

	resp := attendance.ToOvertimeResponse(o, s.policy.Location)
	s.publish(userID, resp)
	return resp, nil
}

// EndOvertime implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndOvertime(ctx context.Context, userID string) (attendance.OvertimeResponse, error) {
	now := s.clock.Now()
	o, err := s.activeOvertime(ctx, userID, now)
	if err != nil {
		return attendance.OvertimeResponse{}, err
	}
	if o == nil {
		return attendance.OvertimeResponse{}, attendance.ErrOvertimeNotActive
	}

	o.ClockOut = &now
	if err := s.OvertimeRepository.Update(ctx, *o); err != nil {
		return attendance.OvertimeResponse{}, fmt.Errorf("failed to end overtime: %w", err)
	}

	resp := attendance.ToOvertimeResponse(*o, s.policy.Location)
	s.publish(userID, resp)
	return resp, nil
}

// GetTodayStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTodayStatus(ctx context.Context, userID string) (attendance.TodayStatusResponse, error) {
	now := s.clock.Now()
	date := s.policy.DateOf(now)
	end := s.policy.OfficeEnd(date)

	rec, err := s.today(ctx, userID, now)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}

	ot, err := s.activeOvertime(ctx, userID, now)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}
	if ot == nil {
		ot, err = s.OvertimeRepository.GetByUserAndDate(ctx, userID, date)
		if err != nil {
			return attendance.TodayStatusResponse{}, fmt.Errorf("failed to get overtime: %w", err)
		}
	}

	state := rec.State()
	otState := ot.State()
	resp := attendance.TodayStatusResponse{
		Date:             date.Format("2006-01-02"),
		State:            state,
		OvertimeState:    otState,
		OfficeStart:      s.policy.OfficeStart(date).Format("15:04"),
		OfficeEnd:        end.Format("15:04"),
		CanClockIn:       state == attendance.StateNotClockedIn && now.Before(end),
		CanBreakIn:       state == attendance.StateClockedIn,
		CanBreakOut:      state == attendance.StateOnBreak,
		CanClockOut:      state == attendance.StateClockedIn || state == attendance.StateOnBreak,
		CanStartOvertime: otState == attendance.OvertimeNotStarted && !now.Before(end),
		CanEndOvertime:   otState == attendance.OvertimeActive,
	}
	if rec != nil {
		r := s.toResponse(*rec)
		resp.Attendance = &r
	}
	if ot != nil {
		o := attendance.ToOvertimeResponse(*ot, s.policy.Location)
		resp.OvertimeRecord = &o
	}
	return resp, nil
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	items := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		items = append(items, s.toResponse(r))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  validator.TotalPages(total, filter.Limit),
		Showing:     fmt.Sprintf("%d of %d", len(items), total),
		Attendances: items,
	}, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, userID string, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	filter.UserID = nil
	filter.Search = nil
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return s.list(ctx, filter)
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, requesterID string, isAdmin bool, id string) (attendance.AttendanceResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if !isAdmin && rec.UserID != requesterID {
		return attendance.AttendanceResponse{}, attendance.ErrForbidden
	}
	return s.toResponse(rec), nil
}

func (s *AttendanceServiceImpl) listOvertime(ctx context.Context, filter attendance.OvertimeFilter) (attendance.ListOvertimeResponse, error) {
	records, total, err := s.OvertimeRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListOvertimeResponse{}, fmt.Errorf("failed to list overtime: %w", err)
	}

	items := make([]attendance.OvertimeResponse, 0, len(records))
	for _, o := range records {
		items = append(items, attendance.ToOvertimeResponse(o, s.policy.Location))
	}

	return attendance.ListOvertimeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(items), total),
		Overtime:   items,
	}, nil
}

// GetMyOvertime implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyOvertime(ctx context.Context, userID string, filter attendance.OvertimeFilter) (attendance.ListOvertimeResponse, error) {
	filter.UserID = nil
	if err := filter.Validate(); err != nil {
		return attendance.ListOvertimeResponse{}, err
	}
	filter.UserID = &userID
	return s.listOvertime(ctx, filter)
}

// ListOvertime implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListOvertime(ctx context.Context, filter attendance.OvertimeFilter) (attendance.ListOvertimeResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListOvertimeResponse{}, err
	}
	return s.listOvertime(ctx, filter)
}

// AutoClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AutoClockOut(ctx context.Context) (int, error) {
	now := s.clock.Now()
	open, err := s.AttendanceRepository.ListOpen(ctx, s.policy.DateOf(now))
	if err != nil {
		return 0, fmt.Errorf("failed to list open attendance: %w", err)
	}

	closed := 0
	for i := range open {
		changed, err := s.settle(ctx, &open[i], now)
		if err != nil {
			slog.Error("Failed to auto clock out", "attendance_id", open[i].ID, "error", err)
			continue
		}
		if changed {
			closed++
		}
	}
	return closed, nil
}

// markAbsentBackfillDays caps how far MarkAbsent reaches back after downtime.
const markAbsentBackfillDays = 14

// MarkAbsent implements attendance.AttendanceService. It fills every working
// day after the last marked date up to yesterday, recording Leave for users on
// approved vacation and Absent for everyone else without a record. Users are
// only marked on days from their account creation onwards.
func (s *AttendanceServiceImpl) MarkAbsent(ctx context.Context) (int, error) {
	today := s.policy.DateOf(s.clock.Now())
	yesterday := today.AddDate(0, 0, -1)

	from := yesterday
	latest, err := s.AttendanceRepository.LatestMarkedDate(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to find last marked date: %w", err)
	}
	if latest != nil {
		from = latest.AddDate(0, 0, 1)
	}
	if floor := today.AddDate(0, 0, -markAbsentBackfillDays); from.Before(floor) {
		from = floor
	}

	users, err := s.UserRepository.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}

	created := 0
	for date := from; !date.After(yesterday); date = date.AddDate(0, 0, 1) {
		if s.policy.IsWeekend(date) {
			continue
		}
		n, err := s.markDay(ctx, date, users)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (s *AttendanceServiceImpl) markDay(ctx context.Context, date time.Time, users []user.User) (int, error) {
	present, err := s.AttendanceRepository.ListUserIDsByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list attendance for %s: %w", date.Format("2006-01-02"), err)
	}
	onLeave, err := s.leave.UsersOnLeave(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list users on leave: %w", err)
	}

	seen := make(map[string]bool, len(present))
	for _, id := range present {
		seen[id] = true
	}
	leave := make(map[string]bool, len(onLeave))
	for _, id := range onLeave {
		leave[id] = true
	}

	created := 0
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		if !u.CreatedAt.IsZero() && s.policy.DateOf(u.CreatedAt).After(date) {
			continue
		}
		status := attendance.StatusAbsent
		if leave[u.ID] {
			status = attendance.StatusLeave
		}
		_, err := s.AttendanceRepository.Create(ctx, attendance.Record{
			UserID: u.ID,
			Date:   date,
			Status: status,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyClockedIn) {
				continue
			}
			slog.Error("Failed to mark attendance", "user_id", u.ID, "status", status, "error", err)
			continue
		}
		created++
	}
	return created, nil
}
