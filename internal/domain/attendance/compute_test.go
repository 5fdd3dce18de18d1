package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 6, 10, hour, min, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestWorkedDuration(t *testing.T) {
	tests := []struct {
		name   string
		in     time.Time
		out    time.Time
		breaks []BreakInterval
		want   time.Duration
	}{
		{
			name: "full day with lunch break",
			in:   at(9, 0),
			out:  at(18, 0),
			breaks: []BreakInterval{
				{BreakIn: at(12, 0), BreakOut: ptr(at(12, 30))},
			},
			want: 8*time.Hour + 30*time.Minute,
		},
		{
			name: "open break is ignored",
			in:   at(9, 0),
			out:  at(17, 0),
			breaks: []BreakInterval{
				{BreakIn: at(12, 0), BreakOut: ptr(at(13, 0))},
				{BreakIn: at(16, 0)},
			},
			want: 7 * time.Hour,
		},
		{
			name: "breaks longer than the day clamp to zero",
			in:   at(9, 0),
			out:  at(10, 0),
			breaks: []BreakInterval{
				{BreakIn: at(9, 0), BreakOut: ptr(at(11, 0))},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkedDuration(tt.in, tt.out, tt.breaks))
		})
	}
}

func TestSplitOvertime(t *testing.T) {
	required := 9 * time.Hour

	regular, overtime := SplitOvertime(8*time.Hour+30*time.Minute, required)
	assert.Equal(t, 8*time.Hour+30*time.Minute, regular)
	assert.Zero(t, overtime)

	regular, overtime = SplitOvertime(10*time.Hour+15*time.Minute, required)
	assert.Equal(t, required, regular)
	assert.Equal(t, time.Hour+15*time.Minute, overtime)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "8h 30m", FormatDuration(8*time.Hour+30*time.Minute))
	assert.Equal(t, "0h 0m", FormatDuration(-time.Minute))
	assert.Equal(t, "-", FormatClock(nil, time.UTC))
	assert.Equal(t, "09:05", FormatClock(ptr(at(9, 5)), time.UTC))
}

func TestRecordState(t *testing.T) {
	var none *Record
	assert.Equal(t, StateNotClockedIn, none.State())

	r := &Record{ClockIn: ptr(at(9, 0))}
	assert.Equal(t, StateClockedIn, r.State())

	r.Breaks = []BreakInterval{{ID: "b1", BreakIn: at(12, 0)}}
	assert.Equal(t, StateOnBreak, r.State())
	require.NotNil(t, r.OpenBreak())
	assert.Equal(t, "b1", r.OpenBreak().ID)

	r.Breaks[0].BreakOut = ptr(at(12, 30))
	assert.Equal(t, StateClockedIn, r.State())

	r.ClockOut = ptr(at(18, 0))
	assert.Equal(t, StateClockedOut, r.State())
}

func TestPolicy(t *testing.T) {
	p, err := NewPolicy("Asia/Jakarta", "09:00", "18:00", 15, 9, []time.Weekday{time.Saturday, time.Sunday})
	require.NoError(t, err)
	jkt := p.Location

	// 2024-06-10 is a Monday.
	assert.Equal(t, StatusPresent, p.StatusAt(time.Date(2024, 6, 10, 9, 15, 0, 0, jkt)))
	assert.Equal(t, StatusLate, p.StatusAt(time.Date(2024, 6, 10, 9, 16, 0, 0, jkt)))
	assert.Equal(t, StatusWeekend, p.StatusAt(time.Date(2024, 6, 15, 10, 0, 0, 0, jkt)))

	// 23:30 UTC on the 9th is already the 10th in Jakarta.
	date := p.DateOf(time.Date(2024, 6, 9, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, time.Date(2024, 6, 10, 18, 0, 0, 0, jkt), p.OfficeEnd(date))
	assert.Equal(t, 9*time.Hour, p.RequiredDaily)

	_, err = NewPolicy("Mars/Olympus", "09:00", "18:00", 15, 9, nil)
	assert.Error(t, err)
}

func TestToResponse_OpenRecordShowsDash(t *testing.T) {
	r := Record{ID: "a", Date: at(0, 0), ClockIn: ptr(at(9, 0)), Status: StatusPresent}
	resp := ToResponse(r, 9*time.Hour, time.UTC)
	assert.Equal(t, "09:00", resp.ClockIn)
	assert.Equal(t, "-", resp.ClockOut)
	assert.Equal(t, "-", resp.Worked)
	assert.Equal(t, "-", resp.Overtime)
}
