package supply

import "context"

type SupplyRepository interface {
	Create(ctx context.Context, s Supply) (Supply, error)
	GetByID(ctx context.Context, id string) (Supply, error)
	Update(ctx context.Context, s Supply) error
	// Delete returns ErrSupplyInUse while Pending or Approved requests reference the supply.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter SupplyFilter) ([]Supply, int64, error)
	ListLowStock(ctx context.Context) ([]Supply, error)

	// Decrement subtracts qty from the stock and returns the remaining
	// quantity, or ErrInsufficientStock when fewer than qty are on hand.
	Decrement(ctx context.Context, id string, qty int) (int, error)
}

type RequestRepository interface {
	Create(ctx context.Context, r Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// UpdateDecision persists the decision fields only when the stored
	// status equals from, else ErrRequestNotPending.
	UpdateDecision(ctx context.Context, r Request, from RequestStatus) error
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
}
