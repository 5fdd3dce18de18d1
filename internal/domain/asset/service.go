package asset

import "context"

type AssetService interface {
	CreateAsset(ctx context.Context, req CreateAssetRequest) (AssetResponse, error)
	UpdateAsset(ctx context.Context, id string, req UpdateAssetRequest) (AssetResponse, error)
	// DeleteAsset refuses assets with an Active assignment.
	DeleteAsset(ctx context.Context, id string) error
	GetAsset(ctx context.Context, id string) (AssetResponse, error)
	ListAssets(ctx context.Context, filter AssetFilter) (ListAssetResponse, error)

	AssignAsset(ctx context.Context, adminID string, req AssignAssetRequest) (AssignmentResponse, error)
	ReturnAsset(ctx context.Context, actorID string, isAdmin bool, assignmentID string, req ReturnAssetRequest) (AssignmentResponse, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) (ListAssignmentResponse, error)
	ListMyAssignments(ctx context.Context, userID string, filter AssignmentFilter) (ListAssignmentResponse, error)

	CreateRequest(ctx context.Context, userID string, req CreateRequestRequest) (RequestResponse, error)
	ApproveRequest(ctx context.Context, adminID string, id string, req ApproveRequestRequest) (RequestResponse, error)
	FulfillRequest(ctx context.Context, adminID string, id string, req FulfillRequestRequest) (RequestResponse, error)
	RejectRequest(ctx context.Context, adminID string, id string, req RejectRequestRequest) (RequestResponse, error)
	GetRequest(ctx context.Context, requesterID string, isAdmin bool, id string) (RequestResponse, error)
	ListRequests(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)
	ListMyRequests(ctx context.Context, userID string, filter RequestFilter) (ListRequestResponse, error)
}
