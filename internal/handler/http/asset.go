package http

import (
	"net/http"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/asset"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AssetHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)

	Assign(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
	ListAssignments(w http.ResponseWriter, r *http.Request)
	ListMyAssignments(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	FulfillRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	ListMyRequests(w http.ResponseWriter, r *http.Request)
}

type assetHandlerImpl struct {
	assetService asset.AssetService
}

func NewAssetHandler(assetService asset.AssetService) AssetHandler {
	return &assetHandlerImpl{assetService: assetService}
}

// Create implements AssetHandler.
func (h *assetHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req asset.CreateAssetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.assetService.CreateAsset(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Asset created successfully", created)
}

// Update implements AssetHandler.
func (h *assetHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req asset.UpdateAssetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.assetService.UpdateAsset(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Asset updated successfully", updated)
}

// Delete implements AssetHandler.
func (h *assetHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.assetService.DeleteAsset(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Asset deleted successfully", nil)
}

// Get implements AssetHandler.
func (h *assetHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.assetService.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// List implements AssetHandler.
func (h *assetHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := asset.AssetFilter{
		Search:   queryString(r, "search"),
		Category: queryString(r, "category"),
		Status:   queryString(r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	result, err := h.assetService.ListAssets(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Assign implements AssetHandler.
func (h *assetHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req asset.AssignAssetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	assignment, err := h.assetService.AssignAsset(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Asset assigned successfully", assignment)
}

// Return implements AssetHandler.
func (h *assetHandlerImpl) Return(w http.ResponseWriter, r *http.Request) {
	var req asset.ReturnAssetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	assignment, err := h.assetService.ReturnAsset(ctx, middleware.UserID(ctx), middleware.IsAdmin(ctx), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Asset returned successfully", assignment)
}

func assignmentFilter(r *http.Request) asset.AssignmentFilter {
	filter := asset.AssignmentFilter{
		AssetID: queryString(r, "asset_id"),
		UserID:  queryString(r, "user_id"),
		Status:  queryString(r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// ListAssignments implements AssetHandler.
func (h *assetHandlerImpl) ListAssignments(w http.ResponseWriter, r *http.Request) {
	result, err := h.assetService.ListAssignments(r.Context(), assignmentFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListMyAssignments implements AssetHandler.
func (h *assetHandlerImpl) ListMyAssignments(w http.ResponseWriter, r *http.Request) {
	result, err := h.assetService.ListMyAssignments(r.Context(), middleware.UserID(r.Context()), assignmentFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CreateRequest implements AssetHandler.
func (h *assetHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req asset.CreateRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.assetService.CreateRequest(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Asset request submitted successfully", created)
}

// ApproveRequest implements AssetHandler. The body is optional; when it
// names an asset the request is fulfilled in the same step.
func (h *assetHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var req asset.ApproveRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decided, err := h.assetService.ApproveRequest(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Asset request approved", decided)
}

// FulfillRequest implements AssetHandler.
func (h *assetHandlerImpl) FulfillRequest(w http.ResponseWriter, r *http.Request) {
	var req asset.FulfillRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decided, err := h.assetService.FulfillRequest(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Asset request fulfilled", decided)
}

// RejectRequest implements AssetHandler.
func (h *assetHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var req asset.RejectRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decided, err := h.assetService.RejectRequest(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Asset request rejected", decided)
}

// GetRequest implements AssetHandler.
func (h *assetHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	found, err := h.assetService.GetRequest(ctx, middleware.UserID(ctx), middleware.IsAdmin(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

func assetRequestFilter(r *http.Request) asset.RequestFilter {
	filter := asset.RequestFilter{
		UserID:  queryString(r, "user_id"),
		Status:  queryString(r, "status"),
		Urgency: queryString(r, "urgency"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// ListRequests implements AssetHandler.
func (h *assetHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	result, err := h.assetService.ListRequests(r.Context(), assetRequestFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListMyRequests implements AssetHandler.
func (h *assetHandlerImpl) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	result, err := h.assetService.ListMyRequests(r.Context(), middleware.UserID(r.Context()), assetRequestFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
