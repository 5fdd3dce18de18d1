package asset

import "time"

type Status string

const (
	StatusAvailable   Status = "Available"
	StatusAssigned    Status = "Assigned"
	StatusMaintenance Status = "Maintenance"
	StatusRetired     Status = "Retired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "Active"
	AssignmentReturned AssignmentStatus = "Returned"
)

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

type Asset struct {
	ID              string
	Name            string
	Category        string
	SerialNumber    *string
	Status          Status
	PurchaseDate    *time.Time
	PurchaseCost    *float64
	ProofOfPurchase *string // base64 data URL
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	AssigneeID   *string
	AssigneeName *string
}

// Assignment lends an asset to a user. An asset has at most one Active
// assignment at a time.
type Assignment struct {
	ID                 string
	AssetID            string
	UserID             string
	AssignedBy         string
	IssueDate          time.Time
	ExpectedReturnDate *time.Time
	ReturnDate         *time.Time
	Status             AssignmentStatus
	Condition          *string
	Notes              *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DTO
	AssetName *string
	UserName  *string
}

type Request struct {
	ID              string
	UserID          string
	Category        string
	Reason          string
	Urgency         Urgency
	Status          RequestStatus
	ApprovedBy      *string
	AssignedAssetID *string
	RejectionReason *string
	DecidedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	UserName *string
}
