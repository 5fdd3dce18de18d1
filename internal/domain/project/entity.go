package project

import "time"

type Status string

const (
	StatusActive    Status = "Active"
	StatusOnHold    Status = "OnHold"
	StatusCompleted Status = "Completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID          string
	Name        string
	Code        string
	Description *string
	Status      Status
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO
	MemberCount int
}

// Allocation assigns a user to a project with a daily hour budget. A user
// has at most one active allocation per project.
type Allocation struct {
	ID             string
	ProjectID      string
	UserID         string
	Role           string
	HoursAllocated float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	ProjectName *string
	ProjectCode *string
	UserName    *string
}

// DailyUpdate is a user's work log on one allocation for one date.
type DailyUpdate struct {
	ID                   string
	AllocationID         string
	Date                 time.Time
	HoursWorked          float64
	Description          string
	Blockers             *string
	CompletionPercentage int
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// DTO
	ProjectID   *string
	ProjectName *string
	UserID      *string
	UserName    *string
}

// ReportRow is one daily update joined with its allocation and project.
type ReportRow struct {
	ProjectID            string
	ProjectName          string
	ProjectCode          string
	UserID               string
	UserName             string
	HoursAllocated       float64
	Date                 time.Time
	HoursWorked          float64
	CompletionPercentage int
}
