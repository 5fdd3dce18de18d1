package vacation

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// VacationRequest is a date range of leave. A rejected request is never
// edited; resubmitting creates a new request pointing back at it through
// OriginalRequestID.
type VacationRequest struct {
	ID                string
	UserID            string
	StartDate         time.Time
	EndDate           time.Time
	Reason            string
	Status            Status
	RejectionReason   *string
	OriginalRequestID *string
	ReviewedBy        *string
	ReviewedAt        *time.Time
	CancelledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	UserName     *string
	ReviewerName *string
}

// TotalDays counts calendar days in [start, end] inclusive: ceil(diffDays)+1.
func TotalDays(start, end time.Time) int {
	diff := end.Sub(start).Hours() / 24
	days := int(diff)
	if float64(days) < diff {
		days++
	}
	return days + 1
}

func (v VacationRequest) TotalDays() int {
	return TotalDays(v.StartDate, v.EndDate)
}

// Overlaps reports whether the inclusive ranges intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
