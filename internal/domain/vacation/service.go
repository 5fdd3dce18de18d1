package vacation

import "context"

type VacationService interface {
	CreateVacation(ctx context.Context, userID string, req CreateVacationRequest) (VacationResponse, error)
	ApproveVacation(ctx context.Context, reviewerID string, id string) (VacationResponse, error)
	RejectVacation(ctx context.Context, reviewerID string, id string, req RejectVacationRequest) (VacationResponse, error)

	// CancelVacation moves a Pending or Approved request to Cancelled. Owners
	// and admins may cancel.
	CancelVacation(ctx context.Context, actorID string, isAdmin bool, id string) (VacationResponse, error)

	// DeleteVacation removes the owner's own Pending request.
	DeleteVacation(ctx context.Context, userID string, id string) error

	// ResubmitVacation creates a new Pending request linked to a Rejected one.
	ResubmitVacation(ctx context.Context, userID string, originalID string, req CreateVacationRequest) (VacationResponse, error)

	GetVacationHistory(ctx context.Context, requesterID string, isAdmin bool, id string) (HistoryResponse, error)
	GetVacation(ctx context.Context, requesterID string, isAdmin bool, id string) (VacationResponse, error)
	ListMyVacations(ctx context.Context, userID string, filter VacationFilter) (ListVacationResponse, error)
	ListVacations(ctx context.Context, filter VacationFilter) (ListVacationResponse, error)
}
