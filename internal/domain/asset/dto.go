package asset

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type CreateAssetRequest struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	SerialNumber    *string  `json:"serial_number,omitempty"`
	PurchaseDate    *string  `json:"purchase_date,omitempty"` // YYYY-MM-DD
	PurchaseCost    *float64 `json:"purchase_cost,omitempty"`
	ProofOfPurchase *string  `json:"proof_of_purchase,omitempty"` // data URL
	Notes           *string  `json:"notes,omitempty"`
}

func validateDocument(errs validator.ValidationErrors, proof *string) validator.ValidationErrors {
	if proof != nil && *proof != "" && !validator.IsValidDocumentDataURL(*proof) {
		errs = append(errs, validator.ValidationError{
			Field:   "proof_of_purchase",
			Message: "proof_of_purchase must be a base64 data URL (png, jpeg or pdf, max 5MB)",
		})
	}
	return errs
}

func (r *CreateAssetRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	} else if utf8.RuneCountInString(r.Name) > 200 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not exceed 200 characters"})
	}

	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "category is required"})
	}

	if r.PurchaseDate != nil && *r.PurchaseDate != "" {
		if _, ok := validator.IsValidDate(*r.PurchaseDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "purchase_date", Message: "purchase_date must be in YYYY-MM-DD format"})
		}
	}
	if r.PurchaseCost != nil && *r.PurchaseCost < 0 {
		errs = append(errs, validator.ValidationError{Field: "purchase_cost", Message: "purchase_cost must not be negative"})
	}
	errs = validateDocument(errs, r.ProofOfPurchase)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateAssetRequest struct {
	Name            *string  `json:"name,omitempty"`
	Category        *string  `json:"category,omitempty"`
	SerialNumber    *string  `json:"serial_number,omitempty"`
	Status          *Status  `json:"status,omitempty"`
	PurchaseDate    *string  `json:"purchase_date,omitempty"`
	PurchaseCost    *float64 `json:"purchase_cost,omitempty"`
	ProofOfPurchase *string  `json:"proof_of_purchase,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

func (r *UpdateAssetRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name cannot be empty"})
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "category cannot be empty"})
	}
	if r.Status != nil && !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Available, Assigned, Maintenance, Retired"})
	}
	if r.PurchaseDate != nil && *r.PurchaseDate != "" {
		if _, ok := validator.IsValidDate(*r.PurchaseDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "purchase_date", Message: "purchase_date must be in YYYY-MM-DD format"})
		}
	}
	if r.PurchaseCost != nil && *r.PurchaseCost < 0 {
		errs = append(errs, validator.ValidationError{Field: "purchase_cost", Message: "purchase_cost must not be negative"})
	}
	errs = validateDocument(errs, r.ProofOfPurchase)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignAssetRequest struct {
	AssetID            string  `json:"asset_id"`
	UserID             string  `json:"user_id"`
	ExpectedReturnDate *string `json:"expected_return_date,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

func validateReturnDate(errs validator.ValidationErrors, date *string) validator.ValidationErrors {
	if date != nil && *date != "" {
		if _, ok := validator.IsValidDate(*date); !ok {
			errs = append(errs, validator.ValidationError{Field: "expected_return_date", Message: "expected_return_date must be in YYYY-MM-DD format"})
		}
	}
	return errs
}

func (r *AssignAssetRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.AssetID) {
		errs = append(errs, validator.ValidationError{Field: "asset_id", Message: "asset_id must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id must be a valid UUID"})
	}
	errs = validateReturnDate(errs, r.ExpectedReturnDate)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReturnAssetRequest struct {
	Condition string  `json:"condition"`
	Notes     *string `json:"notes,omitempty"`
}

func (r *ReturnAssetRequest) Validate() error {
	r.Condition = strings.TrimSpace(r.Condition)
	if r.Condition == "" {
		return validator.ValidationErrors{{Field: "condition", Message: "condition is required"}}
	}
	return nil
}

type CreateRequestRequest struct {
	Category string  `json:"category"`
	Reason   string  `json:"reason"`
	Urgency  Urgency `json:"urgency"`
}

func (r *CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "category is required"})
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}
	if r.Urgency == "" {
		r.Urgency = UrgencyMedium
	}
	if !r.Urgency.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "urgency", Message: "urgency must be one of: Low, Medium, High"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ApproveRequestRequest optionally binds an inventory item. With AssetID the
// request is fulfilled immediately; without it the request is only approved.
type ApproveRequestRequest struct {
	AssetID            *string `json:"asset_id,omitempty"`
	ExpectedReturnDate *string `json:"expected_return_date,omitempty"`
}

func (r *ApproveRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.AssetID != nil && *r.AssetID == "" {
		r.AssetID = nil
	}
	if r.AssetID != nil && !validator.IsValidUUID(*r.AssetID) {
		errs = append(errs, validator.ValidationError{Field: "asset_id", Message: "asset_id must be a valid UUID"})
	}
	errs = validateReturnDate(errs, r.ExpectedReturnDate)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type FulfillRequestRequest struct {
	AssetID            string  `json:"asset_id"`
	ExpectedReturnDate *string `json:"expected_return_date,omitempty"`
}

func (r *FulfillRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.AssetID) {
		errs = append(errs, validator.ValidationError{Field: "asset_id", Message: "asset_id must be a valid UUID"})
	}
	errs = validateReturnDate(errs, r.ExpectedReturnDate)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequestRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return validator.ValidationErrors{{Field: "reason", Message: "rejection reason is required"}}
	}
	return nil
}

type AssetFilter struct {
	Search   *string `json:"search,omitempty"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AssetFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	if f.Status != nil && *f.Status != "" && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Available, Assigned, Maintenance, Retired"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignmentFilter struct {
	AssetID *string `json:"asset_id,omitempty"`
	UserID  *string `json:"user_id,omitempty"`
	Status  *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AssignmentFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	if f.Status != nil && *f.Status != "" &&
		*f.Status != string(AssignmentActive) && *f.Status != string(AssignmentReturned) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Active, Returned"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestFilter struct {
	UserID  *string `json:"user_id,omitempty"`
	Status  *string `json:"status,omitempty"`
	Urgency *string `json:"urgency,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *RequestFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	if f.Status != nil && *f.Status != "" && !RequestStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Pending, Approved, Rejected, Fulfilled"})
	}
	if f.Urgency != nil && *f.Urgency != "" && !Urgency(*f.Urgency).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "urgency", Message: "urgency must be one of: Low, Medium, High"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssetResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	SerialNumber    *string  `json:"serial_number,omitempty"`
	Status          Status   `json:"status"`
	PurchaseDate    *string  `json:"purchase_date,omitempty"`
	PurchaseCost    *float64 `json:"purchase_cost,omitempty"`
	ProofOfPurchase *string  `json:"proof_of_purchase,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	AssigneeID      *string  `json:"assignee_id,omitempty"`
	AssigneeName    *string  `json:"assignee_name,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type AssignmentResponse struct {
	ID                 string           `json:"id"`
	AssetID            string           `json:"asset_id"`
	AssetName          *string          `json:"asset_name,omitempty"`
	UserID             string           `json:"user_id"`
	UserName           *string          `json:"user_name,omitempty"`
	AssignedBy         string           `json:"assigned_by"`
	IssueDate          string           `json:"issue_date"`
	ExpectedReturnDate *string          `json:"expected_return_date,omitempty"`
	ReturnDate         *string          `json:"return_date,omitempty"`
	Status             AssignmentStatus `json:"status"`
	Condition          *string          `json:"condition,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
}

type RequestResponse struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	UserName        *string       `json:"user_name,omitempty"`
	Category        string        `json:"category"`
	Reason          string        `json:"reason"`
	Urgency         Urgency       `json:"urgency"`
	Status          RequestStatus `json:"status"`
	ApprovedBy      *string       `json:"approved_by,omitempty"`
	AssignedAssetID *string       `json:"assigned_asset_id,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	DecidedAt       *string       `json:"decided_at,omitempty"`
	CreatedAt       string        `json:"created_at"`
}

type ListAssetResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Showing    string          `json:"showing"`
	Assets     []AssetResponse `json:"assets"`
}

type ListAssignmentResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Assignments []AssignmentResponse `json:"assignments"`
}

type ListRequestResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Requests   []RequestResponse `json:"requests"`
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func ToAssetResponse(a Asset) AssetResponse {
	return AssetResponse{
		ID:              a.ID,
		Name:            a.Name,
		Category:        a.Category,
		SerialNumber:    a.SerialNumber,
		Status:          a.Status,
		PurchaseDate:    dateString(a.PurchaseDate),
		PurchaseCost:    a.PurchaseCost,
		ProofOfPurchase: a.ProofOfPurchase,
		Notes:           a.Notes,
		AssigneeID:      a.AssigneeID,
		AssigneeName:    a.AssigneeName,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.Format(time.RFC3339),
	}
}

func ToAssignmentResponse(a Assignment) AssignmentResponse {
	issue := a.IssueDate
	return AssignmentResponse{
		ID:                 a.ID,
		AssetID:            a.AssetID,
		AssetName:          a.AssetName,
		UserID:             a.UserID,
		UserName:           a.UserName,
		AssignedBy:         a.AssignedBy,
		IssueDate:          *dateString(&issue),
		ExpectedReturnDate: dateString(a.ExpectedReturnDate),
		ReturnDate:         dateString(a.ReturnDate),
		Status:             a.Status,
		Condition:          a.Condition,
		Notes:              a.Notes,
	}
}

func ToRequestResponse(r Request) RequestResponse {
	resp := RequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		UserName:        r.UserName,
		Category:        r.Category,
		Reason:          r.Reason,
		Urgency:         r.Urgency,
		Status:          r.Status,
		ApprovedBy:      r.ApprovedBy,
		AssignedAssetID: r.AssignedAssetID,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		s := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}
