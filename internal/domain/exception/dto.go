package exception

import (
	"strings"
	"unicode/utf8"

	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type SubmitExceptionRequest struct {
	Type   Type   `json:"type"`
	Reason string `json:"reason"`
	Date   string `json:"date"` // YYYY-MM-DD
}

func (r *SubmitExceptionRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Type = Type(strings.ToUpper(strings.TrimSpace(string(r.Type))))
	if !r.Type.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: LATE_ARRIVAL, MISSED_CLOCK_IN, MISSED_CLOCK_OUT, EARLY_LEAVE, OTHER",
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

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectExceptionRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectExceptionRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return validator.ValidationErrors{{
			Field:   "reason",
			Message: "rejection reason is required",
		}}
	}
	return nil
}

type ExceptionFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	Type      *string `json:"type,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ExceptionFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	errs = append(errs, validator.DateRange(f.StartDate, f.EndDate)...)

	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: Pending, Approved, Rejected",
			})
		}
	}
	if f.Type != nil && *f.Type != "" && !Type(*f.Type).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is not a valid exception type",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExceptionResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	UserName        *string `json:"user_name,omitempty"`
	Type            Type    `json:"type"`
	Reason          string  `json:"reason"`
	Date            string  `json:"date"`
	Status          Status  `json:"status"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewerName    *string `json:"reviewer_name,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type ListExceptionResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Showing    string              `json:"showing"`
	Exceptions []ExceptionResponse `json:"exceptions"`
}

func ToResponse(e ExceptionRequest) ExceptionResponse {
	resp := ExceptionResponse{
		ID:              e.ID,
		UserID:          e.UserID,
		UserName:        e.UserName,
		Type:            e.Type,
		Reason:          e.Reason,
		Date:            e.Date.Format("2006-01-02"),
		Status:          e.Status,
		ReviewedBy:      e.ReviewedBy,
		ReviewerName:    e.ReviewerName,
		RejectionReason: e.RejectionReason,
		CreatedAt:       e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.ReviewedAt != nil {
		at := e.ReviewedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.ReviewedAt = &at
	}
	return resp
}
