package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/project"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/export"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type ProjectServiceImpl struct {
	project.ProjectRepository
	project.AllocationRepository
	project.DailyUpdateRepository
	user.UserRepository
	notifier notification.Service
	clock    clock.Clock
	loc      *time.Location
}

func NewProjectService(
	projectRepo project.ProjectRepository,
	allocationRepo project.AllocationRepository,
	updateRepo project.DailyUpdateRepository,
	userRepo user.UserRepository,
	notifier notification.Service,
	clk clock.Clock,
	loc *time.Location,
) project.ProjectService {
	return &ProjectServiceImpl{
		ProjectRepository:     projectRepo,
		AllocationRepository:  allocationRepo,
		DailyUpdateRepository: updateRepo,
		UserRepository:        userRepo,
		notifier:              notifier,
		clock:                 clk,
		loc:                   loc,
	}
}

func parseDate(v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	t, ok := validator.IsValidDate(*v)
	if !ok {
		return nil
	}
	return &t
}

func (s *ProjectServiceImpl) today() time.Time {
	now := s.clock.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *ProjectServiceImpl) getProject(ctx context.Context, id string) (project.Project, error) {
	p, err := s.ProjectRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return project.Project{}, err
		}
		return project.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *ProjectServiceImpl) getAllocation(ctx context.Context, id string) (project.Allocation, error) {
	a, err := s.AllocationRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, project.ErrAllocationNotFound) {
			return project.Allocation{}, err
		}
		return project.Allocation{}, fmt.Errorf("failed to get allocation: %w", err)
	}
	return a, nil
}

// CreateProject implements project.ProjectService.
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, req project.CreateProjectRequest) (project.ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	created, err := s.ProjectRepository.Create(ctx, project.Project{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   parseDate(req.StartDate),
		EndDate:     parseDate(req.EndDate),
	})
	if err != nil {
		if errors.Is(err, project.ErrProjectCodeExists) {
			return project.ProjectResponse{}, err
		}
		return project.ProjectResponse{}, fmt.Errorf("failed to create project: %w", err)
	}
	return project.ToProjectResponse(created), nil
}

// UpdateProject implements project.ProjectService.
func (s *ProjectServiceImpl) UpdateProject(ctx context.Context, id string, req project.UpdateProjectRequest) (project.ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	p, err := s.getProject(ctx, id)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		p.Code = *req.Code
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.StartDate != nil {
		p.StartDate = parseDate(req.StartDate)
	}
	if req.EndDate != nil {
		p.EndDate = parseDate(req.EndDate)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return project.ProjectResponse{}, validator.ValidationErrors{{
			Field: "end_date", Message: "end_date must not be before start_date",
		}}
	}

	if err := s.ProjectRepository.Update(ctx, p); err != nil {
		if errors.Is(err, project.ErrProjectCodeExists) || errors.Is(err, project.ErrProjectNotFound) {
			return project.ProjectResponse{}, err
		}
		return project.ProjectResponse{}, fmt.Errorf("failed to update project: %w", err)
	}
	return project.ToProjectResponse(p), nil
}

// DeleteProject implements project.ProjectService. Allocations go with the
// project; projects with logged work are kept for reporting.
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, id string) error {
	if err := s.ProjectRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) || errors.Is(err, project.ErrProjectHasUpdates) {
			return err
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// GetProject implements project.ProjectService.
func (s *ProjectServiceImpl) GetProject(ctx context.Context, id string) (project.ProjectResponse, error) {
	p, err := s.getProject(ctx, id)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	return project.ToProjectResponse(p), nil
}

// ListProjects implements project.ProjectService.
func (s *ProjectServiceImpl) ListProjects(ctx context.Context, filter project.ProjectFilter) (project.ListProjectResponse, error) {
	if err := filter.Validate(); err != nil {
		return project.ListProjectResponse{}, err
	}
	items, total, err := s.ProjectRepository.List(ctx, filter)
	if err != nil {
		return project.ListProjectResponse{}, fmt.Errorf("failed to list projects: %w", err)
	}
	out := make([]project.ProjectResponse, 0, len(items))
	for _, p := range items {
		out = append(out, project.ToProjectResponse(p))
	}
	return project.ListProjectResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Projects:   out,
	}, nil
}

// CreateAllocation implements project.ProjectService.
func (s *ProjectServiceImpl) CreateAllocation(ctx context.Context, projectID string, req project.CreateAllocationRequest) (project.AllocationResponse, error) {
	if err := req.Validate(); err != nil {
		return project.AllocationResponse{}, err
	}

	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return project.AllocationResponse{}, err
	}
	if p.Status == project.StatusCompleted {
		return project.AllocationResponse{}, project.ErrProjectNotActive
	}

	u, err := s.UserRepository.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return project.AllocationResponse{}, err
		}
		return project.AllocationResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !u.IsActive {
		return project.AllocationResponse{}, user.ErrUserInactive
	}

	created, err := s.AllocationRepository.Create(ctx, project.Allocation{
		ProjectID:      p.ID,
		UserID:         u.ID,
		Role:           req.Role,
		HoursAllocated: req.HoursAllocated,
		IsActive:       true,
	})
	if err != nil {
		if errors.Is(err, project.ErrAllocationExists) {
			return project.AllocationResponse{}, err
		}
		return project.AllocationResponse{}, fmt.Errorf("failed to create allocation: %w", err)
	}
	created.ProjectName = &p.Name
	created.ProjectCode = &p.Code
	created.UserName = &u.FullName

	resp := project.ToAllocationResponse(created)
	s.notifier.Publish(u.ID, notification.KindProject.EventName(), resp)
	return resp, nil
}

// UpdateAllocation implements project.ProjectService.
func (s *ProjectServiceImpl) UpdateAllocation(ctx context.Context, id string, req project.UpdateAllocationRequest) (project.AllocationResponse, error) {
	if err := req.Validate(); err != nil {
		return project.AllocationResponse{}, err
	}

	a, err := s.getAllocation(ctx, id)
	if err != nil {
		return project.AllocationResponse{}, err
	}
	if req.Role != nil {
		a.Role = strings.TrimSpace(*req.Role)
	}
	if req.HoursAllocated != nil {
		a.HoursAllocated = *req.HoursAllocated
	}
	if err := s.AllocationRepository.Update(ctx, a); err != nil {
		return project.AllocationResponse{}, fmt.Errorf("failed to update allocation: %w", err)
	}

	resp := project.ToAllocationResponse(a)
	s.notifier.Publish(a.UserID, notification.KindProject.EventName(), resp)
	return resp, nil
}

// DeactivateAllocation implements project.ProjectService. Past daily updates
// stay attached to the allocation.
func (s *ProjectServiceImpl) DeactivateAllocation(ctx context.Context, id string) (project.AllocationResponse, error) {
	a, err := s.getAllocation(ctx, id)
	if err != nil {
		return project.AllocationResponse{}, err
	}
	if !a.IsActive {
		return project.AllocationResponse{}, project.ErrAllocationInactive
	}
	a.IsActive = false
	if err := s.AllocationRepository.Update(ctx, a); err != nil {
		return project.AllocationResponse{}, fmt.Errorf("failed to deactivate allocation: %w", err)
	}

	resp := project.ToAllocationResponse(a)
	s.notifier.Publish(a.UserID, notification.KindProject.EventName(), resp)
	return resp, nil
}

// ListAllocations implements project.ProjectService.
func (s *ProjectServiceImpl) ListAllocations(ctx context.Context, filter project.AllocationFilter) (project.ListAllocationResponse, error) {
	if err := filter.Validate(); err != nil {
		return project.ListAllocationResponse{}, err
	}
	items, total, err := s.AllocationRepository.List(ctx, filter)
	if err != nil {
		return project.ListAllocationResponse{}, fmt.Errorf("failed to list allocations: %w", err)
	}
	out := make([]project.AllocationResponse, 0, len(items))
	for _, a := range items {
		out = append(out, project.ToAllocationResponse(a))
	}
	return project.ListAllocationResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  validator.TotalPages(total, filter.Limit),
		Showing:     fmt.Sprintf("%d of %d", len(out), total),
		Allocations: out,
	}, nil
}

// ListMyAllocations implements project.ProjectService.
func (s *ProjectServiceImpl) ListMyAllocations(ctx context.Context, userID string) (project.ListAllocationResponse, error) {
	return s.ListAllocations(ctx, project.AllocationFilter{UserID: &userID, ActiveOnly: true, Limit: 100})
}

// SubmitDailyUpdate implements project.ProjectService.
func (s *ProjectServiceImpl) SubmitDailyUpdate(ctx context.Context, userID string, req project.SubmitDailyUpdateRequest) (project.DailyUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return project.DailyUpdateResponse{}, err
	}

	a, err := s.getAllocation(ctx, req.AllocationID)
	if err != nil {
		return project.DailyUpdateResponse{}, err
	}
	if a.UserID != userID {
		return project.DailyUpdateResponse{}, project.ErrAllocationForbidden
	}
	if !a.IsActive {
		return project.DailyUpdateResponse{}, project.ErrAllocationInactive
	}
	if req.Day.After(s.today()) {
		return project.DailyUpdateResponse{}, project.ErrUpdateFutureDay
	}

	p, err := s.getProject(ctx, a.ProjectID)
	if err != nil {
		return project.DailyUpdateResponse{}, err
	}
	if p.Status != project.StatusActive {
		return project.DailyUpdateResponse{}, project.ErrProjectNotActive
	}

	created, err := s.DailyUpdateRepository.Create(ctx, project.DailyUpdate{
		AllocationID:         a.ID,
		Date:                 req.Day,
		HoursWorked:          req.HoursWorked,
		Description:          req.Description,
		Blockers:             req.Blockers,
		CompletionPercentage: req.CompletionPercentage,
	})
	if err != nil {
		if errors.Is(err, project.ErrUpdateExists) {
			return project.DailyUpdateResponse{}, err
		}
		return project.DailyUpdateResponse{}, fmt.Errorf("failed to create daily update: %w", err)
	}
	created.ProjectID = &p.ID
	created.ProjectName = &p.Name
	created.UserID = &a.UserID

	resp := project.ToDailyUpdateResponse(created)
	s.notifier.Publish(userID, notification.KindProject.EventName(), resp)
	return resp, nil
}

// EditDailyUpdate implements project.ProjectService.
func (s *ProjectServiceImpl) EditDailyUpdate(ctx context.Context, userID string, id string, req project.EditDailyUpdateRequest) (project.DailyUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return project.DailyUpdateResponse{}, err
	}

	u, err := s.DailyUpdateRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, project.ErrUpdateNotFound) {
			return project.DailyUpdateResponse{}, err
		}
		return project.DailyUpdateResponse{}, fmt.Errorf("failed to get daily update: %w", err)
	}
	a, err := s.getAllocation(ctx, u.AllocationID)
	if err != nil {
		return project.DailyUpdateResponse{}, err
	}
	if a.UserID != userID {
		return project.DailyUpdateResponse{}, project.ErrUpdateForbidden
	}

	u.HoursWorked = req.HoursWorked
	u.Description = req.Description
	u.Blockers = req.Blockers
	u.CompletionPercentage = req.CompletionPercentage
	if err := s.DailyUpdateRepository.Update(ctx, u); err != nil {
		return project.DailyUpdateResponse{}, fmt.Errorf("failed to update daily update: %w", err)
	}

	resp := project.ToDailyUpdateResponse(u)
	s.notifier.Publish(userID, notification.KindProject.EventName(), resp)
	return resp, nil
}

// ListDailyUpdates implements project.ProjectService.
func (s *ProjectServiceImpl) ListDailyUpdates(ctx context.Context, filter project.DailyUpdateFilter) (project.ListDailyUpdateResponse, error) {
	if err := filter.Validate(); err != nil {
		return project.ListDailyUpdateResponse{}, err
	}
	items, total, err := s.DailyUpdateRepository.List(ctx, filter)
	if err != nil {
		return project.ListDailyUpdateResponse{}, fmt.Errorf("failed to list daily updates: %w", err)
	}
	out := make([]project.DailyUpdateResponse, 0, len(items))
	for _, u := range items {
		out = append(out, project.ToDailyUpdateResponse(u))
	}
	return project.ListDailyUpdateResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Updates:    out,
	}, nil
}

// ListMyDailyUpdates implements project.ProjectService.
func (s *ProjectServiceImpl) ListMyDailyUpdates(ctx context.Context, userID string, filter project.DailyUpdateFilter) (project.ListDailyUpdateResponse, error) {
	filter.UserID = &userID
	return s.ListDailyUpdates(ctx, filter)
}

// ProjectReport implements project.ProjectService.
func (s *ProjectServiceImpl) ProjectReport(ctx context.Context, filter project.ReportFilter) (project.ReportResponse, error) {
	if err := filter.Validate(); err != nil {
		return project.ReportResponse{}, err
	}
	rows, err := s.DailyUpdateRepository.ReportRows(ctx, filter.From, filter.To, filter.ProjectID, filter.UserID)
	if err != nil {
		return project.ReportResponse{}, fmt.Errorf("failed to load report rows: %w", err)
	}
	return project.ReportResponse{
		StartDate: filter.From.Format("2006-01-02"),
		EndDate:   filter.To.Format("2006-01-02"),
		Report:    project.BuildReport(rows),
	}, nil
}

// ExportProjectReport implements project.ProjectService.
func (s *ProjectServiceImpl) ExportProjectReport(ctx context.Context, filter project.ReportFilter, format string, w io.Writer) (string, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		return "", project.ErrUnsupportedFormat
	}

	report, err := s.ProjectReport(ctx, filter)
	if err != nil {
		return "", err
	}
	projects, users := reportTables(report)

	if format == "csv" {
		if err := export.WriteCSV(w, projects, users); err != nil {
			return "", fmt.Errorf("failed to export report: %w", err)
		}
		return export.ContentTypeCSV, nil
	}
	if err := export.WriteXLSX(w, projects, users); err != nil {
		return "", fmt.Errorf("failed to export report: %w", err)
	}
	return export.ContentTypeXLSX, nil
}

// reportTables flattens the report into one row per project member and one
// row per user.
func reportTables(r project.ReportResponse) (export.Table, export.Table) {
	projects := export.Table{
		Sheet:   "Projects",
		Title:   fmt.Sprintf("Project report %s to %s", r.StartDate, r.EndDate),
		Headers: []string{"Project Code", "Project", "Member", "Days Reported", "Hours Worked", "Hours Budgeted", "Utilization %", "Avg Completion %"},
		Widths:  []float64{14, 30, 26, 14, 14, 16, 14, 18},
	}
	for _, p := range r.Projects {
		for _, m := range p.Members {
			projects.Rows = append(projects.Rows, []interface{}{
				p.ProjectCode, p.ProjectName, m.UserName, m.DaysReported, m.HoursWorked, m.HoursBudgeted, m.Utilization, m.AverageCompletion,
			})
		}
		projects.Rows = append(projects.Rows, []interface{}{
			p.ProjectCode, p.ProjectName, "Total", p.DaysReported, p.HoursWorked, p.HoursBudgeted, p.Utilization, p.AverageCompletion,
		})
	}

	users := export.Table{
		Sheet:   "Users",
		Title:   projects.Title,
		Headers: []string{"User", "Projects", "Days Reported", "Hours Worked", "Hours Budgeted", "Utilization %", "Avg Completion %"},
		Widths:  []float64{26, 10, 14, 14, 16, 14, 18},
	}
	for _, u := range r.Users {
		users.Rows = append(users.Rows, []interface{}{
			u.UserName, u.Projects, u.DaysReported, u.HoursWorked, u.HoursBudgeted, u.Utilization, u.AverageCompletion,
		})
	}
	return projects, users
}
