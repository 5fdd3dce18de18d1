package project

import (
	"context"
	"io"
)

type ProjectService interface {
	CreateProject(ctx context.Context, req CreateProjectRequest) (ProjectResponse, error)
	UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (ProjectResponse, error)
	GetProject(ctx context.Context, id string) (ProjectResponse, error)
	ListProjects(ctx context.Context, filter ProjectFilter) (ListProjectResponse, error)
	DeleteProject(ctx context.Context, id string) error

	CreateAllocation(ctx context.Context, projectID string, req CreateAllocationRequest) (AllocationResponse, error)
	UpdateAllocation(ctx context.Context, id string, req UpdateAllocationRequest) (AllocationResponse, error)
	DeactivateAllocation(ctx context.Context, id string) (AllocationResponse, error)
	ListAllocations(ctx context.Context, filter AllocationFilter) (ListAllocationResponse, error)
	ListMyAllocations(ctx context.Context, userID string) (ListAllocationResponse, error)

	SubmitDailyUpdate(ctx context.Context, userID string, req SubmitDailyUpdateRequest) (DailyUpdateResponse, error)
	EditDailyUpdate(ctx context.Context, userID string, id string, req EditDailyUpdateRequest) (DailyUpdateResponse, error)
	ListDailyUpdates(ctx context.Context, filter DailyUpdateFilter) (ListDailyUpdateResponse, error)
	ListMyDailyUpdates(ctx context.Context, userID string, filter DailyUpdateFilter) (ListDailyUpdateResponse, error)

	ProjectReport(ctx context.Context, filter ReportFilter) (ReportResponse, error)
	// ExportProjectReport writes the report as xlsx or csv and returns the
	// content type.
	ExportProjectReport(ctx context.Context, filter ReportFilter, format string, w io.Writer) (string, error)
}
