package asset

import "context"

type AssetRepository interface {
	Create(ctx context.Context, a Asset) (Asset, error)
	GetByID(ctx context.Context, id string) (Asset, error)
	Update(ctx context.Context, a Asset) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AssetFilter) ([]Asset, int64, error)

	// SetStatus moves the asset from one status to another and returns
	// ErrAssetNotAvailable when the stored status is not from.
	SetStatus(ctx context.Context, id string, from, to Status) error
}

type AssignmentRepository interface {
	// Create fails with ErrAssetNotAvailable when the asset already has an Active assignment.
	Create(ctx context.Context, a Assignment) (Assignment, error)
	GetByID(ctx context.Context, id string) (Assignment, error)
	// GetActiveByAsset returns nil when the asset is not assigned.
	GetActiveByAsset(ctx context.Context, assetID string) (*Assignment, error)
	// MarkReturned closes an Active assignment, else ErrAssignmentNotActive.
	MarkReturned(ctx context.Context, a Assignment) error
	List(ctx context.Context, filter AssignmentFilter) ([]Assignment, int64, error)
}

type RequestRepository interface {
	Create(ctx context.Context, r Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// UpdateDecision persists the decision fields only when the stored
	// status equals from, else ErrRequestNotPending.
	UpdateDecision(ctx context.Context, r Request, from RequestStatus) error
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
}
