package supply

import "time"

type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

func (u Urgency) IsValid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "Pending"
	RequestApproved  RequestStatus = "Approved"
	RequestRejected  RequestStatus = "Rejected"
	RequestFulfilled RequestStatus = "Fulfilled"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestFulfilled:
		return true
	}
	return false
}

// Supply is a consumable stock item counted in Unit.
type Supply struct {
	ID              string
	Name            string
	Category        string
	Unit            string
	Quantity        int
	MinimumStock    int
	ProofOfPurchase *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LowStock reports whether the quantity on hand is at or below the minimum.
func (s Supply) LowStock() bool {
	return s.Quantity <= s.MinimumStock
}

type Request struct {
	ID              string
	UserID          string
	SupplyID        string
	Quantity        int
	Reason          string
	Urgency         Urgency
	Status          RequestStatus
	ApprovedBy      *string
	RejectionReason *string
	DecidedAt       *time.Time
	FulfilledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	UserName   *string
	SupplyName *string
	Unit       *string
}
