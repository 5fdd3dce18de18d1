package exception

import "time"

type Type string

const (
	TypeLateArrival    Type = "LATE_ARRIVAL"
	TypeMissedClockIn  Type = "MISSED_CLOCK_IN"
	TypeMissedClockOut Type = "MISSED_CLOCK_OUT"
	TypeEarlyLeave     Type = "EARLY_LEAVE"
	TypeOther          Type = "OTHER"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeLateArrival, TypeMissedClockIn, TypeMissedClockOut, TypeEarlyLeave, TypeOther:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// ExceptionRequest explains an attendance anomaly. Only Pending requests can
// be decided; Approved and Rejected are terminal.
type ExceptionRequest struct {
	ID              string
	UserID          string
	Type            Type
	Reason          string
	Date            time.Time
	Status          Status
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	UserName     *string
	ReviewerName *string
}
