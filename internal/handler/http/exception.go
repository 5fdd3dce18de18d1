package http

import (
	"net/http"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/exception"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ExceptionHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type exceptionHandlerImpl struct {
	exceptionService exception.ExceptionService
}

func NewExceptionHandler(exceptionService exception.ExceptionService) ExceptionHandler {
	return &exceptionHandlerImpl{exceptionService: exceptionService}
}

// Submit implements ExceptionHandler.
func (h *exceptionHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req exception.SubmitExceptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.exceptionService.SubmitException(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Exception submitted successfully", created)
}

// Approve implements ExceptionHandler.
func (h *exceptionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	reviewed, err := h.exceptionService.ApproveException(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Exception approved", reviewed)
}

// Reject implements ExceptionHandler.
func (h *exceptionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req exception.RejectExceptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reviewed, err := h.exceptionService.RejectException(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Exception rejected", reviewed)
}

// Get implements ExceptionHandler.
func (h *exceptionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	found, err := h.exceptionService.GetException(ctx, middleware.UserID(ctx), middleware.IsAdmin(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

func exceptionFilter(r *http.Request) exception.ExceptionFilter {
	filter := exception.ExceptionFilter{
		UserID:    queryString(r, "user_id"),
		Status:    queryString(r, "status"),
		Type:      queryString(r, "type"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// ListMine implements ExceptionHandler.
func (h *exceptionHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.exceptionService.ListMyExceptions(r.Context(), middleware.UserID(r.Context()), exceptionFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements ExceptionHandler.
func (h *exceptionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.exceptionService.ListExceptions(r.Context(), exceptionFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
