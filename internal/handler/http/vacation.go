package http

import (
	"net/http"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/vacation"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type VacationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Resubmit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type vacationHandlerImpl struct {
	vacationService vacation.VacationService
}

func NewVacationHandler(vacationService vacation.VacationService) VacationHandler {
	return &vacationHandlerImpl{vacationService: vacationService}
}

// Create implements VacationHandler.
func (h *vacationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req vacation.CreateVacationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.vacationService.CreateVacation(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Vacation request submitted successfully", created)
}

// Resubmit implements VacationHandler.
func (h *vacationHandlerImpl) Resubmit(w http.ResponseWriter, r *http.Request) {
	var req vacation.CreateVacationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.vacationService.ResubmitVacation(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Vacation request resubmitted successfully", created)
}

// Approve implements VacationHandler.
func (h *vacationHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	reviewed, err := h.vacationService.ApproveVacation(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Vacation request approved", reviewed)
}

// Reject implements VacationHandler.
func (h *vacationHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req vacation.RejectVacationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reviewed, err := h.vacationService.RejectVacation(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Vacation request rejected", reviewed)
}

// Cancel implements VacationHandler.
func (h *vacationHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cancelled, err := h.vacationService.CancelVacation(ctx, middleware.UserID(ctx), middleware.IsAdmin(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Vacation request cancelled", cancelled)
}

// Delete implements VacationHandler.
func (h *vacationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.vacationService.DeleteVacation(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Vacation request deleted", nil)
}

// History implements VacationHandler.
func (h *vacationHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	history, err := h.vacationService.GetVacationHistory(ctx, middleware.UserID(ctx), middleware.IsAdmin(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, history)
}

// Get implements VacationHandler.
func (h *vacationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	found, err := h.vacationService.GetVacation(ctx, middleware.UserID(ctx), middleware.IsAdmin(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

func vacationFilter(r *http.Request) vacation.VacationFilter {
	filter := vacation.VacationFilter{
		UserID:    queryString(r, "user_id"),
		Status:    queryString(r, "status"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// ListMine implements VacationHandler.
func (h *vacationHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.vacationService.ListMyVacations(r.Context(), middleware.UserID(r.Context()), vacationFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements VacationHandler.
func (h *vacationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.vacationService.ListVacations(r.Context(), vacationFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
