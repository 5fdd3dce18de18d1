package supply

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type CreateSupplyRequest struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Unit            string  `json:"unit"`
	Quantity        int     `json:"quantity"`
	MinimumStock    int     `json:"minimum_stock"`
	ProofOfPurchase *string `json:"proof_of_purchase,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func validateStock(errs validator.ValidationErrors, quantity, minimum *int, proof *string) validator.ValidationErrors {
	if quantity != nil && *quantity < 0 {
		errs = append(errs, validator.ValidationError{Field: "quantity", Message: "quantity must not be negative"})
	}
	if minimum != nil && *minimum < 0 {
		errs = append(errs, validator.ValidationError{Field: "minimum_stock", Message: "minimum_stock must not be negative"})
	}
	if proof != nil && *proof != "" && !validator.IsValidDocumentDataURL(*proof) {
		errs = append(errs, validator.ValidationError{
			Field:   "proof_of_purchase",
			Message: "proof_of_purchase must be a base64 data URL (png, jpeg or pdf, max 5MB)",
		})
	}
	return errs
}

func (r *CreateSupplyRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "category is required"})
	}
	r.Unit = strings.TrimSpace(r.Unit)
	if r.Unit == "" {
		r.Unit = "pcs"
	}
	errs = validateStock(errs, &r.Quantity, &r.MinimumStock, r.ProofOfPurchase)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateSupplyRequest struct {
	Name            *string `json:"name,omitempty"`
	Category        *string `json:"category,omitempty"`
	Unit            *string `json:"unit,omitempty"`
	Quantity        *int    `json:"quantity,omitempty"`
	MinimumStock    *int    `json:"minimum_stock,omitempty"`
	ProofOfPurchase *string `json:"proof_of_purchase,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (r *UpdateSupplyRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name cannot be empty"})
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "category cannot be empty"})
	}
	if r.Unit != nil && strings.TrimSpace(*r.Unit) == "" {
		errs = append(errs, validator.ValidationError{Field: "unit", Message: "unit cannot be empty"})
	}
	errs = validateStock(errs, r.Quantity, r.MinimumStock, r.ProofOfPurchase)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateRequestRequest struct {
	SupplyID string  `json:"supply_id"`
	Quantity int     `json:"quantity"`
	Reason   string  `json:"reason"`
	Urgency  Urgency `json:"urgency"`
}

func (r *CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.SupplyID) {
		errs = append(errs, validator.ValidationError{Field: "supply_id", Message: "supply_id must be a valid UUID"})
	}
	if r.Quantity <= 0 {
		errs = append(errs, validator.ValidationError{Field: "quantity", Message: "quantity must be greater than 0"})
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

type SupplyFilter struct {
	Search   *string `json:"search,omitempty"`
	Category *string `json:"category,omitempty"`
	LowStock bool    `json:"low_stock,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *SupplyFilter) Validate() error {
	if errs := validator.Pagination(&f.Page, &f.Limit); len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestFilter struct {
	UserID   *string `json:"user_id,omitempty"`
	SupplyID *string `json:"supply_id,omitempty"`
	Status   *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *RequestFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	if f.Status != nil && *f.Status != "" && !RequestStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Pending, Approved, Rejected, Fulfilled"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SupplyResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Unit            string  `json:"unit"`
	Quantity        int     `json:"quantity"`
	MinimumStock    int     `json:"minimum_stock"`
	LowStock        bool    `json:"low_stock"`
	ProofOfPurchase *string `json:"proof_of_purchase,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type RequestResponse struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	UserName        *string       `json:"user_name,omitempty"`
	SupplyID        string        `json:"supply_id"`
	SupplyName      *string       `json:"supply_name,omitempty"`
	Unit            *string       `json:"unit,omitempty"`
	Quantity        int           `json:"quantity"`
	Reason          string        `json:"reason"`
	Urgency         Urgency       `json:"urgency"`
	Status          RequestStatus `json:"status"`
	ApprovedBy      *string       `json:"approved_by,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	DecidedAt       *string       `json:"decided_at,omitempty"`
	FulfilledAt     *string       `json:"fulfilled_at,omitempty"`
	CreatedAt       string        `json:"created_at"`
}

type ListSupplyResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Showing    string           `json:"showing"`
	Supplies   []SupplyResponse `json:"supplies"`
}

type ListRequestResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Requests   []RequestResponse `json:"requests"`
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func ToSupplyResponse(s Supply) SupplyResponse {
	return SupplyResponse{
		ID:              s.ID,
		Name:            s.Name,
		Category:        s.Category,
		Unit:            s.Unit,
		Quantity:        s.Quantity,
		MinimumStock:    s.MinimumStock,
		LowStock:        s.LowStock(),
		ProofOfPurchase: s.ProofOfPurchase,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       s.UpdatedAt.Format(time.RFC3339),
	}
}

func ToRequestResponse(r Request) RequestResponse {
	return RequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		UserName:        r.UserName,
		SupplyID:        r.SupplyID,
		SupplyName:      r.SupplyName,
		Unit:            r.Unit,
		Quantity:        r.Quantity,
		Reason:          r.Reason,
		Urgency:         r.Urgency,
		Status:          r.Status,
		ApprovedBy:      r.ApprovedBy,
		RejectionReason: r.RejectionReason,
		DecidedAt:       timeString(r.DecidedAt),
		FulfilledAt:     timeString(r.FulfilledAt),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}
