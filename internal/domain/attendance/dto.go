package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type BreakResponse struct {
	ID       string `json:"id"`
	BreakIn  string `json:"break_in"`
	BreakOut string `json:"break_out"`
}

type AttendanceResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	UserName        *string         `json:"user_name,omitempty"`
	Date            string          `json:"date"`
	ClockIn         string          `json:"clock_in"`
	ClockOut        string          `json:"clock_out"`
	Status          Status          `json:"status"`
	AutoClockedOut  bool            `json:"auto_clocked_out"`
	Breaks          []BreakResponse `json:"breaks"`
	TotalBreak      string          `json:"total_break"`
	Worked          string          `json:"worked"`
	Regular         string          `json:"regular"`
	Overtime        string          `json:"overtime"`
	WorkedMinutes   int             `json:"worked_minutes"`
	RegularMinutes  int             `json:"regular_minutes"`
	OvertimeMinutes int             `json:"overtime_minutes"`
}

type OvertimeResponse struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	UserName        *string       `json:"user_name,omitempty"`
	Date            string        `json:"date"`
	ClockIn         string        `json:"clock_in"`
	ClockOut        string        `json:"clock_out"`
	State           OvertimeState `json:"state"`
	Duration        string        `json:"duration"`
	DurationMinutes int           `json:"duration_minutes"`
}

// TodayStatusResponse tells the client which actions are currently legal.
type TodayStatusResponse struct {
	Date             string              `json:"date"`
	State            DayState            `json:"state"`
	OvertimeState    OvertimeState       `json:"overtime_state"`
	OfficeStart      string              `json:"office_start"`
	OfficeEnd        string              `json:"office_end"`
	CanClockIn       bool                `json:"can_clock_in"`
	CanBreakIn       bool                `json:"can_break_in"`
	CanBreakOut      bool                `json:"can_break_out"`
	CanClockOut      bool                `json:"can_clock_out"`
	CanStartOvertime bool                `json:"can_start_overtime"`
	CanEndOvertime   bool                `json:"can_end_overtime"`
	Attendance       *AttendanceResponse `json:"attendance,omitempty"`
	OvertimeRecord   *OvertimeResponse   `json:"overtime,omitempty"`
}

type AttendanceFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	Search    *string `json:"search,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	errs = append(errs, validator.DateRange(f.StartDate, f.EndDate)...)

	if f.UserID != nil && *f.UserID != "" && !validator.IsValidUUID(*f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid UUID",
		})
	}

	if f.Status != nil && *f.Status != "" && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Present, Late, Leave, Weekend, Absent",
		})
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// OvertimeFilter lists overtime sessions. UserID is forced by the service for
// non-admin callers.
type OvertimeFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *OvertimeFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	errs = append(errs, validator.DateRange(f.StartDate, f.EndDate)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type ListOvertimeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Overtime   []OvertimeResponse `json:"overtime"`
}

// ToResponse renders a record for display. Durations are only computed once
// the record has a clock-out; until then they show "-".
func ToResponse(r Record, required time.Duration, loc *time.Location) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		UserName:       r.UserName,
		Date:           r.Date.Format("2006-01-02"),
		ClockIn:        FormatClock(r.ClockIn, loc),
		ClockOut:       FormatClock(r.ClockOut, loc),
		Status:         r.Status,
		AutoClockedOut: r.AutoClockedOut,
		Breaks:         make([]BreakResponse, 0, len(r.Breaks)),
		TotalBreak:     FormatDuration(TotalBreak(r.Breaks)),
		Worked:         "-",
		Regular:        "-",
		Overtime:       "-",
	}
	for _, b := range r.Breaks {
		in := b.BreakIn
		resp.Breaks = append(resp.Breaks, BreakResponse{
			ID:       b.ID,
			BreakIn:  FormatClock(&in, loc),
			BreakOut: FormatClock(b.BreakOut, loc),
		})
	}
	if r.ClockIn != nil && r.ClockOut != nil {
		worked := WorkedDuration(*r.ClockIn, *r.ClockOut, r.Breaks)
		regular, overtime := SplitOvertime(worked, required)
		resp.Worked = FormatDuration(worked)
		resp.Regular = FormatDuration(regular)
		resp.Overtime = FormatDuration(overtime)
		resp.WorkedMinutes = int(worked / time.Minute)
		resp.RegularMinutes = int(regular / time.Minute)
		resp.OvertimeMinutes = int(overtime / time.Minute)
	}
	return resp
}

func ToOvertimeResponse(o OvertimeRecord, loc *time.Location) OvertimeResponse {
	in := o.ClockIn
	resp := OvertimeResponse{
		ID:       o.ID,
		UserID:   o.UserID,
		UserName: o.UserName,
		Date:     o.Date.Format("2006-01-02"),
		ClockIn:  FormatClock(&in, loc),
		ClockOut: FormatClock(o.ClockOut, loc),
		State:    o.State(),
		Duration: "-",
	}
	if o.ClockOut != nil {
		d := o.ClockOut.Sub(o.ClockIn)
		if d < 0 {
			d = 0
		}
		resp.Duration = FormatDuration(d)
		resp.DurationMinutes = int(d / time.Minute)
	}
	return resp
}
