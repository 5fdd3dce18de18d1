package vacation

import (
	"context"
	"time"
)

type VacationRepository interface {
	Create(ctx context.Context, v VacationRequest) (VacationRequest, error)
	GetByID(ctx context.Context, id string) (VacationRequest, error)

	// UpdateStatus persists the review/cancel fields only if the stored
	// status equals from; otherwise it returns ErrStatusConflict.
	UpdateStatus(ctx context.Context, v VacationRequest, from Status) error

	// DeletePending removes a request that is still Pending.
	DeletePending(ctx context.Context, id string) error

	// HasOverlap checks the user's Pending and Approved requests.
	HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error)

	// GetResubmission returns the request created from originalID, or nil.
	GetResubmission(ctx context.Context, originalID string) (*VacationRequest, error)

	List(ctx context.Context, filter VacationFilter) ([]VacationRequest, int64, error)

	// UsersOnLeave lists users with an Approved request covering date.
	UsersOnLeave(ctx context.Context, date time.Time) ([]string, error)
}
