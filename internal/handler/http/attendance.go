package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	BreakIn(w http.ResponseWriter, r *http.Request)
	BreakOut(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	StartOvertime(w http.ResponseWriter, r *http.Request)
	EndOvertime(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetMyOvertime(w http.ResponseWriter, r *http.Request)
	ListOvertime(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func (h *attendanceHandlerImpl) transition(w http.ResponseWriter, r *http.Request, message string,
	action func(ctx context.Context, userID string) (attendance.AttendanceResponse, error)) {
	record, err := action(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, record)
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Clocked in successfully", h.attendanceService.ClockIn)
}

// BreakIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) BreakIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Break started", h.attendanceService.BreakIn)
}

// BreakOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) BreakOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Break ended", h.attendanceService.BreakOut)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Clocked out successfully", h.attendanceService.ClockOut)
}

// StartOvertime implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartOvertime(w http.ResponseWriter, r *http.Request) {
	ot, err := h.attendanceService.StartOvertime(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime started", ot)
}

// EndOvertime implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndOvertime(w http.ResponseWriter, r *http.Request) {
	ot, err := h.attendanceService.EndOvertime(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime ended", ot)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	status, err := h.attendanceService.GetTodayStatus(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

func attendanceFilter(r *http.Request) attendance.AttendanceFilter {
	filter := attendance.AttendanceFilter{
		UserID:    queryString(r, "user_id"),
		Search:    queryString(r, "search"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Status:    queryString(r, "status"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

func overtimeFilter(r *http.Request) attendance.OvertimeFilter {
	filter := attendance.OvertimeFilter{
		UserID:    queryString(r, "user_id"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetMyAttendance(r.Context(), middleware.UserID(r.Context()), attendanceFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListAttendance(r.Context(), attendanceFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	record, err := h.attendanceService.GetAttendance(ctx, middleware.UserID(ctx), middleware.IsAdmin(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, record)
}

// GetMyOvertime implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyOvertime(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetMyOvertime(r.Context(), middleware.UserID(r.Context()), overtimeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListOvertime implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListOvertime(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListOvertime(r.Context(), overtimeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
