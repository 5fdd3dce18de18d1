package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
)

type noopTx struct{}

func (noopTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	notification.Service
	events []string
}

func (n *recordingNotifier) Publish(userID, name string, _ interface{}) {
	n.events = append(n.events, userID+":"+name)
}

type memAttendance struct {
	mu      sync.Mutex
	seq     int
	records map[string]*attendance.Record
}

func newMemAttendance() *memAttendance {
	return &memAttendance{records: map[string]*attendance.Record{}}
}

func (m *memAttendance) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

func (m *memAttendance) Create(_ context.Context, r attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.UserID == r.UserID && existing.Date.Equal(r.Date) {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
	}
	r.ID = m.nextID("att-")
	cp := r
	m.records[r.ID] = &cp
	return r, nil
}

func (m *memAttendance) copyOf(r *attendance.Record) attendance.Record {
	cp := *r
	cp.Breaks = append([]attendance.BreakInterval(nil), r.Breaks...)
	return cp
}

func (m *memAttendance) GetByID(_ context.Context, id string) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return m.copyOf(r), nil
}

func (m *memAttendance) GetByUserAndDate(_ context.Context, userID string, date time.Time) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID == userID && r.Date.Equal(date) {
			cp := m.copyOf(r)
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAttendance) Update(_ context.Context, r attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[r.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	stored.ClockOut = r.ClockOut
	stored.Status = r.Status
	stored.AutoClockedOut = r.AutoClockedOut
	return nil
}

func (m *memAttendance) List(_ context.Context, f attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		out = append(out, m.copyOf(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, int64(len(out)), nil
}

func (m *memAttendance) ListOpen(_ context.Context, date time.Time) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.ClockIn != nil && r.ClockOut == nil && !r.Date.After(date) {
			out = append(out, m.copyOf(r))
		}
	}
	return out, nil
}

func (m *memAttendance) ListUserIDsByDate(_ context.Context, date time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.records {
		if r.Date.Equal(date) {
			out = append(out, r.UserID)
		}
	}
	return out, nil
}

func (m *memAttendance) LatestMarkedDate(_ context.Context, before time.Time) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *time.Time
	for _, r := range m.records {
		if r.ClockIn != nil || !r.Date.Before(before) {
			continue
		}
		if r.Status != attendance.StatusAbsent && r.Status != attendance.StatusLeave {
			continue
		}
		if latest == nil || r.Date.After(*latest) {
			d := r.Date
			latest = &d
		}
	}
	return latest, nil
}

func (m *memAttendance) CreateBreak(_ context.Context, b attendance.BreakInterval) (attendance.BreakInterval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.records[b.AttendanceRecordID]
	if r.OpenBreak() != nil {
		return attendance.BreakInterval{}, attendance.ErrAlreadyOnBreak
	}
	b.ID = m.nextID("brk-")
	r.Breaks = append(r.Breaks, b)
	return b, nil
}

func (m *memAttendance) CloseBreak(_ context.Context, breakID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		for i := range r.Breaks {
			if r.Breaks[i].ID == breakID {
				r.Breaks[i].BreakOut = &at
				return nil
			}
		}
	}
	return fmt.Errorf("break %s not found", breakID)
}

type memOvertime struct {
	seq     int
	records map[string]*attendance.OvertimeRecord
}

func (m *memOvertime) Create(_ context.Context, o attendance.OvertimeRecord) (attendance.OvertimeRecord, error) {
	for _, existing := range m.records {
		if existing.UserID == o.UserID && existing.Date.Equal(o.Date) {
			return attendance.OvertimeRecord{}, attendance.ErrOvertimeAlreadyStarted
		}
	}
	m.seq++
	o.ID = fmt.Sprintf("ot-%d", m.seq)
	cp := o
	m.records[o.ID] = &cp
	return o, nil
}

func (m *memOvertime) GetByUserAndDate(_ context.Context, userID string, date time.Time) (*attendance.OvertimeRecord, error) {
	for _, o := range m.records {
		if o.UserID == userID && o.Date.Equal(date) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memOvertime) Update(_ context.Context, o attendance.OvertimeRecord) error {
	m.records[o.ID].ClockOut = o.ClockOut
	return nil
}

func (m *memOvertime) List(_ context.Context, f attendance.OvertimeFilter) ([]attendance.OvertimeRecord, int64, error) {
	var out []attendance.OvertimeRecord
	for _, o := range m.records {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

type fakeUsers struct {
	user.UserRepository
	active []user.User
}

func (f fakeUsers) ListActive(context.Context) ([]user.User, error) { return f.active, nil }

type fakeLeave struct{ ids []string }

func (f fakeLeave) UsersOnLeave(context.Context, time.Time) ([]string, error) { return f.ids, nil }

type fixture struct {
	svc      attendance.AttendanceService
	clk      *clock.Fixed
	repo     *memAttendance
	overtime *memOvertime
	notifier *recordingNotifier
	loc      *time.Location
	policy   attendance.Policy
}

func newFixture(t *testing.T, start time.Time) *fixture {
	t.Helper()
	policy, err := attendance.NewPolicy("Asia/Jakarta", "09:00", "18:00", 15, 9, []time.Weekday{time.Saturday, time.Sunday})
	require.NoError(t, err)

	f := &fixture{
		clk:      clock.NewFixed(start),
		repo:     newMemAttendance(),
		overtime: &memOvertime{records: map[string]*attendance.OvertimeRecord{}},
		notifier: &recordingNotifier{},
		loc:      policy.Location,
		policy:   policy,
	}
	f.setUsers(user.User{ID: "u1"}, user.User{ID: "u2"}, user.User{ID: "u3"})
	return f
}

// setUsers rebuilds the service around a different set of active users.
func (f *fixture) setUsers(users ...user.User) {
	f.svc = NewAttendanceService(noopTx{}, f.repo, f.overtime, fakeUsers{active: users}, fakeLeave{ids: []string{"u3"}}, f.notifier, f.clk, f.policy)
}

// jkt builds an instant on 2024-06-10 (a Monday) in office time.
func (f *fixture) jkt(hour, min int) time.Time {
	return time.Date(2024, 6, 10, hour, min, 0, 0, f.loc)
}

func TestAttendance_FullDay(t *testing.T) {
	f := newFixture(t, time.Time{})
	f.clk.Set(f.jkt(9, 0))
	ctx := context.Background()

	resp, err := f.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, "09:00", resp.ClockIn)
	assert.Equal(t, "-", resp.ClockOut)

	f.clk.Set(f.jkt(12, 0))
	_, err = f.svc.BreakIn(ctx, "u1")
	require.NoError(t, err)

	_, err = f.svc.BreakIn(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyOnBreak)

	f.clk.Set(f.jkt(12, 30))
	_, err = f.svc.BreakOut(ctx, "u1")
	require.NoError(t, err)

	f.clk.Set(f.jkt(17, 59))
	resp, err = f.svc.ClockOut(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, resp.AutoClockedOut)
	assert.Equal(t, "8h 29m", resp.Worked)
	assert.Equal(t, "0h 0m", resp.Overtime)

	_, err = f.svc.ClockOut(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)

	_, err = f.svc.ClockIn(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	assert.Len(t, f.notifier.events, 4)
	assert.Equal(t, "u1:attendance.updated", f.notifier.events[0])
}

func TestAttendance_ClockOutClosesOpenBreak(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()

	f.clk.Set(f.jkt(9, 30))
	resp, err := f.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Status)

	f.clk.Set(f.jkt(15, 0))
	_, err = f.svc.BreakIn(ctx, "u1")
	require.NoError(t, err)

	f.clk.Set(f.jkt(15, 30))
	resp, err = f.svc.ClockOut(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, resp.Breaks, 1)
	assert.Equal(t, "15:30", resp.Breaks[0].BreakOut)
	assert.Equal(t, "5h 30m", resp.Worked)
}

func TestAttendance_TransitionGuards(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()
	f.clk.Set(f.jkt(10, 0))

	_, err := f.svc.BreakIn(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
	_, err = f.svc.BreakOut(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
	_, err = f.svc.ClockOut(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)

	_, err = f.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)
	_, err = f.svc.BreakOut(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrNotOnBreak)
}

func TestAttendance_ClockInRejectedAtOfficeEnd(t *testing.T) {
	f := newFixture(t, time.Time{})
	f.clk.Set(f.jkt(18, 0))

	_, err := f.svc.ClockIn(context.Background(), "u1")
	assert.ErrorIs(t, err, attendance.ErrClockInAfterOfficeEnd)
}

func TestAttendance_AutoClockOut(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()

	f.clk.Set(f.jkt(9, 0))
	_, err := f.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)
	f.clk.Set(f.jkt(17, 0))
	_, err = f.svc.BreakIn(ctx, "u1")
	require.NoError(t, err)

	f.clk.Set(f.jkt(17, 59))
	n, err := f.svc.AutoClockOut(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clk.Set(f.jkt(18, 5))
	n, err = f.svc.AutoClockOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status, err := f.svc.GetTodayStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedOut, status.State)
	require.NotNil(t, status.Attendance)
	assert.True(t, status.Attendance.AutoClockedOut)
	assert.Equal(t, "18:00", status.Attendance.ClockOut)
	assert.Equal(t, "18:00", status.Attendance.Breaks[0].BreakOut)
	assert.Equal(t, "8h 0m", status.Attendance.Worked)
	assert.True(t, status.CanStartOvertime)
}

func TestAttendance_LazyAutoClockOutBlocksManualClockOut(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()

	f.clk.Set(f.jkt(9, 0))
	_, err := f.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)

	f.clk.Set(f.jkt(19, 0))
	_, err = f.svc.ClockOut(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)

	rec, err := f.repo.GetByUserAndDate(ctx, "u1", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.AutoClockedOut)
}

func TestAttendance_Overtime(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()

	f.clk.Set(f.jkt(17, 0))
	_, err := f.svc.StartOvertime(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrOvertimeNotAvailable)

	_, err = f.svc.EndOvertime(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrOvertimeNotActive)

	f.clk.Set(f.jkt(18, 30))
	resp, err := f.svc.StartOvertime(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, attendance.OvertimeActive, resp.State)

	status, err := f.svc.GetTodayStatus(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, status.CanEndOvertime)
	assert.False(t, status.CanStartOvertime)

	f.clk.Set(f.jkt(20, 45))
	resp, err = f.svc.EndOvertime(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, attendance.OvertimeEnded, resp.State)
	assert.Equal(t, "2h 15m", resp.Duration)

	_, err = f.svc.StartOvertime(ctx, "u1")
	assert.ErrorIs(t, err, attendance.ErrOvertimeAlreadyStarted)
}

func TestAttendance_OvertimeAcrossMidnight(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()

	f.clk.Set(f.jkt(23, 0))
	_, err := f.svc.StartOvertime(ctx, "u1")
	require.NoError(t, err)

	f.clk.Set(f.jkt(23, 0).Add(2 * time.Hour))
	resp, err := f.svc.EndOvertime(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", resp.Date)
	assert.Equal(t, 120, resp.DurationMinutes)
}

func TestAttendance_MarkAbsent(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()

	f.clk.Set(f.jkt(9, 0))
	_, err := f.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)

	// Next morning.
	f.clk.Set(f.jkt(9, 0).AddDate(0, 0, 1))
	n, err := f.svc.MarkAbsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	u2, _ := f.repo.GetByUserAndDate(ctx, "u2", day)
	require.NotNil(t, u2)
	assert.Equal(t, attendance.StatusAbsent, u2.Status)
	u3, _ := f.repo.GetByUserAndDate(ctx, "u3", day)
	require.NotNil(t, u3)
	assert.Equal(t, attendance.StatusLeave, u3.Status)

	n, err = f.svc.MarkAbsent(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAttendance_MarkAbsentSkipsWeekend(t *testing.T) {
	f := newFixture(t, time.Time{})
	// Sunday morning looks back at Saturday.
	f.clk.Set(time.Date(2024, 6, 16, 8, 0, 0, 0, f.loc))

	n, err := f.svc.MarkAbsent(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAttendance_MarkAbsentSkipsUsersCreatedLater(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()
	f.setUsers(
		user.User{ID: "u1", CreatedAt: time.Date(2024, 6, 3, 9, 0, 0, 0, f.loc)},
		user.User{ID: "hire", CreatedAt: time.Date(2024, 6, 11, 9, 0, 0, 0, f.loc)},
	)

	f.clk.Set(time.Date(2024, 6, 11, 10, 0, 0, 0, f.loc))
	n, err := f.svc.MarkAbsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	hire, _ := f.repo.GetByUserAndDate(ctx, "hire", day)
	assert.Nil(t, hire)
	u1, _ := f.repo.GetByUserAndDate(ctx, "u1", day)
	require.NotNil(t, u1)
	assert.Equal(t, attendance.StatusAbsent, u1.Status)
}

func TestAttendance_MarkAbsentBackfillsMissedDays(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()
	f.setUsers(user.User{ID: "u1"})

	// Monday 2024-06-10 is marked, then the job stops until Friday.
	f.clk.Set(time.Date(2024, 6, 11, 1, 0, 0, 0, f.loc))
	n, err := f.svc.MarkAbsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f.clk.Set(time.Date(2024, 6, 14, 8, 0, 0, 0, f.loc))
	n, err = f.svc.MarkAbsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, d := range []int{11, 12, 13} {
		rec, _ := f.repo.GetByUserAndDate(ctx, "u1", time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC))
		require.NotNil(t, rec, "day %d", d)
		assert.Equal(t, attendance.StatusAbsent, rec.Status)
	}
	today, _ := f.repo.GetByUserAndDate(ctx, "u1", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC))
	assert.Nil(t, today)
}

func TestAttendance_MarkAbsentBackfillIsCapped(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()
	f.setUsers(user.User{ID: "u1"})

	f.clk.Set(time.Date(2024, 5, 7, 8, 0, 0, 0, f.loc))
	_, err := f.svc.MarkAbsent(ctx)
	require.NoError(t, err)

	// Weeks later only the last markAbsentBackfillDays are filled.
	f.clk.Set(time.Date(2024, 6, 17, 8, 0, 0, 0, f.loc))
	n, err := f.svc.MarkAbsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	early, _ := f.repo.GetByUserAndDate(ctx, "u1", time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	assert.Nil(t, early)
	first, _ := f.repo.GetByUserAndDate(ctx, "u1", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	assert.NotNil(t, first)
}

func TestAttendance_GetMyOvertimeIgnoresCallerUserFilter(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()

	f.clk.Set(f.jkt(18, 30))
	_, err := f.svc.StartOvertime(ctx, "u1")
	require.NoError(t, err)
	_, err = f.svc.StartOvertime(ctx, "u2")
	require.NoError(t, err)

	other := "not-a-uuid"
	list, err := f.svc.GetMyOvertime(ctx, "u1", attendance.OvertimeFilter{UserID: &other})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)
	assert.Equal(t, "u1", list.Overtime[0].UserID)
}

func TestAttendance_GetAttendanceOwnership(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()
	f.clk.Set(f.jkt(9, 0))

	resp, err := f.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)

	_, err = f.svc.GetAttendance(ctx, "u2", false, resp.ID)
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	got, err := f.svc.GetAttendance(ctx, "admin", true, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = f.svc.GetAttendance(ctx, "u1", false, "missing")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendance_GetMyAttendanceForcesUser(t *testing.T) {
	f := newFixture(t, time.Time{})
	ctx := context.Background()
	f.clk.Set(f.jkt(9, 0))

	_, err := f.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)
	_, err = f.svc.ClockIn(ctx, "u2")
	require.NoError(t, err)

	other := "u2"
	list, err := f.svc.GetMyAttendance(ctx, "u1", attendance.AttendanceFilter{UserID: &other})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)
	assert.Equal(t, "u1", list.Attendances[0].UserID)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)
}
