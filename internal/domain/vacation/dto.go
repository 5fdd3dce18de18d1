package vacation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type CreateVacationRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`

	// Parsed by Validate
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *CreateVacationRequest) Validate() error {
	var errs validator.ValidationErrors
	var okStart, okEnd bool

	if r.Start, okStart = validator.IsValidDate(r.StartDate); !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	if r.End, okEnd = validator.IsValidDate(r.EndDate); !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd && r.End.Before(r.Start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be on or after start_date",
		})
	}

	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if utf8.RuneCountInString(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectVacationRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectVacationRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return validator.ValidationErrors{{
			Field:   "reason",
			Message: "rejection reason is required",
		}}
	}
	return nil
}

type VacationFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // requests ending on or after
	EndDate   *string `json:"end_date,omitempty"`   // requests starting on or before

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *VacationFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	errs = append(errs, validator.DateRange(f.StartDate, f.EndDate)...)

	if f.Status != nil && *f.Status != "" && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Pending, Approved, Rejected, Cancelled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type VacationResponse struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	UserName          *string `json:"user_name,omitempty"`
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
	TotalDays         int     `json:"total_days"`
	Reason            string  `json:"reason"`
	Status            Status  `json:"status"`
	RejectionReason   *string `json:"rejection_reason,omitempty"`
	OriginalRequestID *string `json:"original_request_id,omitempty"`
	ReviewedBy        *string `json:"reviewed_by,omitempty"`
	ReviewerName      *string `json:"reviewer_name,omitempty"`
	ReviewedAt        *string `json:"reviewed_at,omitempty"`
	CancelledAt       *string `json:"cancelled_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

type ListVacationResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Vacations  []VacationResponse `json:"vacations"`
}

// HistoryResponse is a resubmission chain ordered from the first request to the latest.
type HistoryResponse struct {
	RootID   string             `json:"root_id"`
	LatestID string             `json:"latest_id"`
	Requests []VacationResponse `json:"requests"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func ToResponse(v VacationRequest) VacationResponse {
	return VacationResponse{
		ID:                v.ID,
		UserID:            v.UserID,
		UserName:          v.UserName,
		StartDate:         v.StartDate.Format("2006-01-02"),
		EndDate:           v.EndDate.Format("2006-01-02"),
		TotalDays:         v.TotalDays(),
		Reason:            v.Reason,
		Status:            v.Status,
		RejectionReason:   v.RejectionReason,
		OriginalRequestID: v.OriginalRequestID,
		ReviewedBy:        v.ReviewedBy,
		ReviewerName:      v.ReviewerName,
		ReviewedAt:        formatTime(v.ReviewedAt),
		CancelledAt:       formatTime(v.CancelledAt),
		CreatedAt:         v.CreatedAt.Format(time.RFC3339),
	}
}
