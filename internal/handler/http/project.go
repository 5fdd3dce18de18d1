package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/project"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ProjectHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	CreateAllocation(w http.ResponseWriter, r *http.Request)
	UpdateAllocation(w http.ResponseWriter, r *http.Request)
	DeactivateAllocation(w http.ResponseWriter, r *http.Request)
	ListAllocations(w http.ResponseWriter, r *http.Request)
	ListMyAllocations(w http.ResponseWriter, r *http.Request)

	SubmitDailyUpdate(w http.ResponseWriter, r *http.Request)
	EditDailyUpdate(w http.ResponseWriter, r *http.Request)
	ListDailyUpdates(w http.ResponseWriter, r *http.Request)
	ListMyDailyUpdates(w http.ResponseWriter, r *http.Request)

	Report(w http.ResponseWriter, r *http.Request)
	ExportReport(w http.ResponseWriter, r *http.Request)
}

type projectHandlerImpl struct {
	projectService project.ProjectService
}

func NewProjectHandler(projectService project.ProjectService) ProjectHandler {
	return &projectHandlerImpl{projectService: projectService}
}

// Create implements ProjectHandler.
func (h *projectHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req project.CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.projectService.CreateProject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Project created successfully", created)
}

// Update implements ProjectHandler.
func (h *projectHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req project.UpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.projectService.UpdateProject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Project updated successfully", updated)
}

// Get implements ProjectHandler.
func (h *projectHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.projectService.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// Delete implements ProjectHandler.
func (h *projectHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Project deleted successfully", nil)
}

// List implements ProjectHandler.
func (h *projectHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := project.ProjectFilter{
		Search: queryString(r, "search"),
		Status: queryString(r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	result, err := h.projectService.ListProjects(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CreateAllocation implements ProjectHandler.
func (h *projectHandlerImpl) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var req project.CreateAllocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.projectService.CreateAllocation(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Allocation created successfully", created)
}

// UpdateAllocation implements ProjectHandler.
func (h *projectHandlerImpl) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	var req project.UpdateAllocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.projectService.UpdateAllocation(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Allocation updated successfully", updated)
}

// DeactivateAllocation implements ProjectHandler.
func (h *projectHandlerImpl) DeactivateAllocation(w http.ResponseWriter, r *http.Request) {
	updated, err := h.projectService.DeactivateAllocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Allocation deactivated", updated)
}

// ListAllocations implements ProjectHandler.
func (h *projectHandlerImpl) ListAllocations(w http.ResponseWriter, r *http.Request) {
	filter := project.AllocationFilter{
		ProjectID:  queryString(r, "project_id"),
		UserID:     queryString(r, "user_id"),
		ActiveOnly: getBoolQueryParam(r, "active_only", false),
	}
	if id := chi.URLParam(r, "id"); id != "" {
		filter.ProjectID = &id
	}
	filter.Page, filter.Limit = pagination(r)

	result, err := h.projectService.ListAllocations(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListMyAllocations implements ProjectHandler.
func (h *projectHandlerImpl) ListMyAllocations(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.ListMyAllocations(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// SubmitDailyUpdate implements ProjectHandler.
func (h *projectHandlerImpl) SubmitDailyUpdate(w http.ResponseWriter, r *http.Request) {
	var req project.SubmitDailyUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.projectService.SubmitDailyUpdate(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Daily update submitted successfully", created)
}

// EditDailyUpdate implements ProjectHandler.
func (h *projectHandlerImpl) EditDailyUpdate(w http.ResponseWriter, r *http.Request) {
	var req project.EditDailyUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.projectService.EditDailyUpdate(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Daily update saved", updated)
}

func dailyUpdateFilter(r *http.Request) project.DailyUpdateFilter {
	filter := project.DailyUpdateFilter{
		ProjectID:    queryString(r, "project_id"),
		UserID:       queryString(r, "user_id"),
		AllocationID: queryString(r, "allocation_id"),
		StartDate:    queryString(r, "start_date"),
		EndDate:      queryString(r, "end_date"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// ListDailyUpdates implements ProjectHandler.
func (h *projectHandlerImpl) ListDailyUpdates(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.ListDailyUpdates(r.Context(), dailyUpdateFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListMyDailyUpdates implements ProjectHandler.
func (h *projectHandlerImpl) ListMyDailyUpdates(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.ListMyDailyUpdates(r.Context(), middleware.UserID(r.Context()), dailyUpdateFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func reportFilter(r *http.Request) project.ReportFilter {
	return project.ReportFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		ProjectID: queryString(r, "project_id"),
		UserID:    queryString(r, "user_id"),
	}
}

// Report implements ProjectHandler.
func (h *projectHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.ProjectReport(r.Context(), reportFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ExportReport implements ProjectHandler. The file is rendered in memory so
// a failure still produces a JSON error instead of a truncated download.
func (h *projectHandlerImpl) ExportReport(w http.ResponseWriter, r *http.Request) {
	filter := reportFilter(r)
	format := r.URL.Query().Get("format")

	var buf bytes.Buffer
	contentType, err := h.projectService.ExportProjectReport(r.Context(), filter, format, &buf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ext := "xlsx"
	if strings.EqualFold(format, "csv") {
		ext = "csv"
	}
	filename := fmt.Sprintf("project-report_%s_%s.%s", filter.StartDate, filter.EndDate, ext)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
