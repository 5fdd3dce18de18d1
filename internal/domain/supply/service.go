package supply

import "context"

type SupplyService interface {
	CreateSupply(ctx context.Context, req CreateSupplyRequest) (SupplyResponse, error)
	UpdateSupply(ctx context.Context, id string, req UpdateSupplyRequest) (SupplyResponse, error)
	DeleteSupply(ctx context.Context, id string) error
	GetSupply(ctx context.Context, id string) (SupplyResponse, error)
	ListSupplies(ctx context.Context, filter SupplyFilter) (ListSupplyResponse, error)
	ListLowStock(ctx context.Context) ([]SupplyResponse, error)

	CreateRequest(ctx context.Context, userID string, req CreateRequestRequest) (RequestResponse, error)
	ApproveRequest(ctx context.Context, adminID string, id string) (RequestResponse, error)
	RejectRequest(ctx context.Context, adminID string, id string, req RejectRequestRequest) (RequestResponse, error)
	// FulfillRequest hands out an Approved request and takes the quantity
	// out of stock in the same transaction.
	FulfillRequest(ctx context.Context, adminID string, id string) (RequestResponse, error)
	GetRequest(ctx context.Context, requesterID string, isAdmin bool, id string) (RequestResponse, error)
	ListRequests(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)
	ListMyRequests(ctx context.Context, userID string, filter RequestFilter) (ListRequestResponse, error)
}
