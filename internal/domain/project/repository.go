package project

import (
	"context"
	"time"
)

type ProjectRepository interface {
	Create(ctx context.Context, p Project) (Project, error)
	GetByID(ctx context.Context, id string) (Project, error)
	Update(ctx context.Context, p Project) error
	List(ctx context.Context, filter ProjectFilter) ([]Project, int64, error)
	// Delete removes the project together with its allocations. It fails
	// with ErrProjectHasUpdates when any allocation has a daily update.
	Delete(ctx context.Context, id string) error
}

type AllocationRepository interface {
	// Create fails with ErrAllocationExists when the user already has an
	// active allocation on the project.
	Create(ctx context.Context, a Allocation) (Allocation, error)
	GetByID(ctx context.Context, id string) (Allocation, error)
	Update(ctx context.Context, a Allocation) error
	List(ctx context.Context, filter AllocationFilter) ([]Allocation, int64, error)
}

type DailyUpdateRepository interface {
	// Create fails with ErrUpdateExists on a second update for the same
	// allocation and date.
	Create(ctx context.Context, u DailyUpdate) (DailyUpdate, error)
	GetByID(ctx context.Context, id string) (DailyUpdate, error)
	Update(ctx context.Context, u DailyUpdate) error
	List(ctx context.Context, filter DailyUpdateFilter) ([]DailyUpdate, int64, error)
	ReportRows(ctx context.Context, from, to time.Time, projectID, userID *string) ([]ReportRow, error)
}
