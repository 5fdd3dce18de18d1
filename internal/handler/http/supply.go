package http

import (
	"net/http"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/supply"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SupplyHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	LowStock(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	FulfillRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	ListMyRequests(w http.ResponseWriter, r *http.Request)
}

type supplyHandlerImpl struct {
	supplyService supply.SupplyService
}

func NewSupplyHandler(supplyService supply.SupplyService) SupplyHandler {
	return &supplyHandlerImpl{supplyService: supplyService}
}

// Create implements SupplyHandler.
func (h *supplyHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req supply.CreateSupplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.supplyService.CreateSupply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Supply created successfully", created)
}

// Update implements SupplyHandler.
func (h *supplyHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req supply.UpdateSupplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.supplyService.UpdateSupply(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Supply updated successfully", updated)
}

// Delete implements SupplyHandler.
func (h *supplyHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.supplyService.DeleteSupply(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Supply deleted successfully", nil)
}

// Get implements SupplyHandler.
func (h *supplyHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.supplyService.GetSupply(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// List implements SupplyHandler.
func (h *supplyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := supply.SupplyFilter{
		Search:   queryString(r, "search"),
		Category: queryString(r, "category"),
		LowStock: getBoolQueryParam(r, "low_stock", false),
	}
	filter.Page, filter.Limit = pagination(r)

	result, err := h.supplyService.ListSupplies(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// LowStock implements SupplyHandler.
func (h *supplyHandlerImpl) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.supplyService.ListLowStock(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, items)
}

// CreateRequest implements SupplyHandler.
func (h *supplyHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req supply.CreateRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.supplyService.CreateRequest(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Supply request submitted successfully", created)
}

// ApproveRequest implements SupplyHandler.
func (h *supplyHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	decided, err := h.supplyService.ApproveRequest(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Supply request approved", decided)
}

// RejectRequest implements SupplyHandler.
func (h *supplyHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var req supply.RejectRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decided, err := h.supplyService.RejectRequest(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Supply request rejected", decided)
}

// FulfillRequest implements SupplyHandler.
func (h *supplyHandlerImpl) FulfillRequest(w http.ResponseWriter, r *http.Request) {
	decided, err := h.supplyService.FulfillRequest(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Supply request fulfilled", decided)
}

// GetRequest implements SupplyHandler.
func (h *supplyHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	found, err := h.supplyService.GetRequest(ctx, middleware.UserID(ctx), middleware.IsAdmin(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

func supplyRequestFilter(r *http.Request) supply.RequestFilter {
	filter := supply.RequestFilter{
		UserID:   queryString(r, "user_id"),
		SupplyID: queryString(r, "supply_id"),
		Status:   queryString(r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// ListRequests implements SupplyHandler.
func (h *supplyHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	result, err := h.supplyService.ListRequests(r.Context(), supplyRequestFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListMyRequests implements SupplyHandler.
func (h *supplyHandlerImpl) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	result, err := h.supplyService.ListMyRequests(r.Context(), middleware.UserID(r.Context()), supplyRequestFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
