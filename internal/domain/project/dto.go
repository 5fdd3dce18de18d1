package project

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
	Status      Status  `json:"status"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

func validateProjectDates(errs validator.ValidationErrors, start, end *string) validator.ValidationErrors {
	return append(errs, validator.DateRange(start, end)...)
}

func (r *CreateProjectRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	} else if utf8.RuneCountInString(r.Name) > 200 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not exceed 200 characters"})
	}
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if r.Code == "" {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code is required"})
	} else if utf8.RuneCountInString(r.Code) > 20 {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code must not exceed 20 characters"})
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	if !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Active, OnHold, Completed"})
	}
	errs = validateProjectDates(errs, r.StartDate, r.EndDate)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

func (r *UpdateProjectRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name cannot be empty"})
	}
	if r.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*r.Code))
		r.Code = &code
		if code == "" {
			errs = append(errs, validator.ValidationError{Field: "code", Message: "code cannot be empty"})
		}
	}
	if r.Status != nil && !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Active, OnHold, Completed"})
	}
	errs = validateProjectDates(errs, r.StartDate, r.EndDate)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateAllocationRequest struct {
	UserID         string  `json:"user_id"`
	Role           string  `json:"role"`
	HoursAllocated float64 `json:"hours_allocated"`
}

func validateHoursAllocated(errs validator.ValidationErrors, hours float64) validator.ValidationErrors {
	if hours <= 0 || hours > 24 {
		errs = append(errs, validator.ValidationError{Field: "hours_allocated", Message: "hours_allocated must be greater than 0 and at most 24"})
	}
	return errs
}

func (r *CreateAllocationRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id must be a valid UUID"})
	}
	r.Role = strings.TrimSpace(r.Role)
	if r.Role == "" {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role is required"})
	}
	errs = validateHoursAllocated(errs, r.HoursAllocated)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateAllocationRequest struct {
	Role           *string  `json:"role,omitempty"`
	HoursAllocated *float64 `json:"hours_allocated,omitempty"`
}

func (r *UpdateAllocationRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Role != nil && strings.TrimSpace(*r.Role) == "" {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role cannot be empty"})
	}
	if r.HoursAllocated != nil {
		errs = validateHoursAllocated(errs, *r.HoursAllocated)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SubmitDailyUpdateRequest struct {
	AllocationID         string  `json:"allocation_id"`
	Date                 string  `json:"date"` // YYYY-MM-DD
	HoursWorked          float64 `json:"hours_worked"`
	Description          string  `json:"description"`
	Blockers             *string `json:"blockers,omitempty"`
	CompletionPercentage int     `json:"completion_percentage"`

	// Parsed by Validate
	Day time.Time `json:"-"`
}

func validateWork(errs validator.ValidationErrors, hours float64, completion int, description string) validator.ValidationErrors {
	if hours <= 0 || hours > 24 {
		errs = append(errs, validator.ValidationError{Field: "hours_worked", Message: "hours_worked must be greater than 0 and at most 24"})
	}
	if completion < 0 || completion > 100 {
		errs = append(errs, validator.ValidationError{Field: "completion_percentage", Message: "completion_percentage must be between 0 and 100"})
	}
	if description == "" {
		errs = append(errs, validator.ValidationError{Field: "description", Message: "description is required"})
	} else if utf8.RuneCountInString(description) > 2000 {
		errs = append(errs, validator.ValidationError{Field: "description", Message: "description must not exceed 2000 characters"})
	}
	return errs
}

func (r *SubmitDailyUpdateRequest) Validate() error {
	var errs validator.ValidationErrors
	var ok bool

	if !validator.IsValidUUID(r.AllocationID) {
		errs = append(errs, validator.ValidationError{Field: "allocation_id", Message: "allocation_id must be a valid UUID"})
	}
	if r.Day, ok = validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}
	r.Description = strings.TrimSpace(r.Description)
	errs = validateWork(errs, r.HoursWorked, r.CompletionPercentage, r.Description)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EditDailyUpdateRequest struct {
	HoursWorked          float64 `json:"hours_worked"`
	Description          string  `json:"description"`
	Blockers             *string `json:"blockers,omitempty"`
	CompletionPercentage int     `json:"completion_percentage"`
}

func (r *EditDailyUpdateRequest) Validate() error {
	r.Description = strings.TrimSpace(r.Description)
	if errs := validateWork(nil, r.HoursWorked, r.CompletionPercentage, r.Description); len(errs) > 0 {
		return errs
	}
	return nil
}

type ProjectFilter struct {
	Search *string `json:"search,omitempty"`
	Status *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ProjectFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	if f.Status != nil && *f.Status != "" && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Active, OnHold, Completed"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AllocationFilter struct {
	ProjectID  *string `json:"project_id,omitempty"`
	UserID     *string `json:"user_id,omitempty"`
	ActiveOnly bool    `json:"active_only,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AllocationFilter) Validate() error {
	if errs := validator.Pagination(&f.Page, &f.Limit); len(errs) > 0 {
		return errs
	}
	return nil
}

type DailyUpdateFilter struct {
	ProjectID    *string `json:"project_id,omitempty"`
	UserID       *string `json:"user_id,omitempty"`
	AllocationID *string `json:"allocation_id,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *DailyUpdateFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit)
	errs = append(errs, validator.DateRange(f.StartDate, f.EndDate)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// maxReportDays bounds a report to roughly one year.
const maxReportDays = 366

type ReportFilter struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	ProjectID *string `json:"project_id,omitempty"`
	UserID    *string `json:"user_id,omitempty"`

	// Parsed by Validate
	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

func (f *ReportFilter) Validate() error {
	var errs validator.ValidationErrors
	var okFrom, okTo bool

	if f.From, okFrom = validator.IsValidDate(f.StartDate); !okFrom {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	if f.To, okTo = validator.IsValidDate(f.EndDate); !okTo {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if okFrom && okTo {
		if f.To.Before(f.From) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
		} else if f.To.Sub(f.From) > maxReportDays*24*time.Hour {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "report range must not exceed 366 days"})
		}
	}
	if f.ProjectID != nil && !validator.IsValidUUID(*f.ProjectID) {
		errs = append(errs, validator.ValidationError{Field: "project_id", Message: "project_id must be a valid UUID"})
	}
	if f.UserID != nil && !validator.IsValidUUID(*f.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProjectResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
	Status      Status  `json:"status"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	MemberCount int     `json:"member_count"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type AllocationResponse struct {
	ID             string  `json:"id"`
	ProjectID      string  `json:"project_id"`
	ProjectName    *string `json:"project_name,omitempty"`
	ProjectCode    *string `json:"project_code,omitempty"`
	UserID         string  `json:"user_id"`
	UserName       *string `json:"user_name,omitempty"`
	Role           string  `json:"role"`
	HoursAllocated float64 `json:"hours_allocated"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
}

type DailyUpdateResponse struct {
	ID                   string  `json:"id"`
	AllocationID         string  `json:"allocation_id"`
	ProjectID            *string `json:"project_id,omitempty"`
	ProjectName          *string `json:"project_name,omitempty"`
	UserID               *string `json:"user_id,omitempty"`
	UserName             *string `json:"user_name,omitempty"`
	Date                 string  `json:"date"`
	HoursWorked          float64 `json:"hours_worked"`
	Description          string  `json:"description"`
	Blockers             *string `json:"blockers,omitempty"`
	CompletionPercentage int     `json:"completion_percentage"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

type ListProjectResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Projects   []ProjectResponse `json:"projects"`
}

type ListAllocationResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Allocations []AllocationResponse `json:"allocations"`
}

type ListDailyUpdateResponse struct {
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
	Showing    string                `json:"showing"`
	Updates    []DailyUpdateResponse `json:"updates"`
}

type ReportResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Report
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func ToProjectResponse(p Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		Status:      p.Status,
		StartDate:   dateString(p.StartDate),
		EndDate:     dateString(p.EndDate),
		MemberCount: p.MemberCount,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func ToAllocationResponse(a Allocation) AllocationResponse {
	return AllocationResponse{
		ID:             a.ID,
		ProjectID:      a.ProjectID,
		ProjectName:    a.ProjectName,
		ProjectCode:    a.ProjectCode,
		UserID:         a.UserID,
		UserName:       a.UserName,
		Role:           a.Role,
		HoursAllocated: a.HoursAllocated,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}

func ToDailyUpdateResponse(u DailyUpdate) DailyUpdateResponse {
	return DailyUpdateResponse{
		ID:                   u.ID,
		AllocationID:         u.AllocationID,
		ProjectID:            u.ProjectID,
		ProjectName:          u.ProjectName,
		UserID:               u.UserID,
		UserName:             u.UserName,
		Date:                 u.Date.Format("2006-01-02"),
		HoursWorked:          u.HoursWorked,
		Description:          u.Description,
		Blockers:             u.Blockers,
		CompletionPercentage: u.CompletionPercentage,
		CreatedAt:            u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            u.UpdatedAt.Format(time.RFC3339),
	}
}
