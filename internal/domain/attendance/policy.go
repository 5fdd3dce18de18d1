package attendance

import (
	"fmt"
	"time"
)

// Policy describes the office working day. All wall-clock times are
// interpreted in Location.
type Policy struct {
	Location      *time.Location
	StartHour     int
	StartMinute   int
	EndHour       int
	EndMinute     int
	GracePeriod   time.Duration
	RequiredDaily time.Duration
	WeekendDays   []time.Weekday
}

// NewPolicy builds a Policy from "HH:MM" strings.
func NewPolicy(timezone, start, end string, graceMinutes int, requiredHours float64, weekend []time.Weekday) (Policy, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	s, err := time.Parse("15:04", start)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid office start %q: %w", start, err)
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid office end %q: %w", end, err)
	}
	return Policy{
		Location:      loc,
		StartHour:     s.Hour(),
		StartMinute:   s.Minute(),
		EndHour:       e.Hour(),
		EndMinute:     e.Minute(),
		GracePeriod:   time.Duration(graceMinutes) * time.Minute,
		RequiredDaily: time.Duration(requiredHours * float64(time.Hour)),
		WeekendDays:   weekend,
	}, nil
}

// DateOf returns the office calendar date of t as midnight UTC, the form
// stored in DATE columns.
func (p Policy) DateOf(t time.Time) time.Time {
	local := t.In(p.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// OfficeStart returns the office start instant on the given civil date.
func (p Policy) OfficeStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), p.StartHour, p.StartMinute, 0, 0, p.Location)
}

// OfficeEnd returns the office end instant on the given civil date.
func (p Policy) OfficeEnd(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), p.EndHour, p.EndMinute, 0, 0, p.Location)
}

func (p Policy) IsWeekend(date time.Time) bool {
	for _, d := range p.WeekendDays {
		if date.Weekday() == d {
			return true
		}
	}
	return false
}

// StatusAt classifies a clock-in instant.
func (p Policy) StatusAt(clockIn time.Time) Status {
	date := p.DateOf(clockIn)
	if p.IsWeekend(date) {
		return StatusWeekend
	}
	if clockIn.After(p.OfficeStart(date).Add(p.GracePeriod)) {
		return StatusLate
	}
	return StatusPresent
}
