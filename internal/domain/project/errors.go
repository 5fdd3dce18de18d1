package project

import "errors"

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectCodeExists = errors.New("a project with this code already exists")
	ErrProjectNotActive  = errors.New("project is not active")
	ErrProjectHasUpdates = errors.New("project has logged daily updates; mark it Completed instead")

	ErrAllocationNotFound  = errors.New("project allocation not found")
	ErrAllocationExists    = errors.New("user already has an active allocation on this project")
	ErrAllocationInactive  = errors.New("project allocation is inactive")
	ErrAllocationForbidden = errors.New("you can only log work on your own allocations")

	ErrUpdateNotFound  = errors.New("daily update not found")
	ErrUpdateExists    = errors.New("a daily update already exists for this allocation and date")
	ErrUpdateFutureDay = errors.New("daily updates cannot be logged for future dates")
	ErrUpdateForbidden = errors.New("you can only edit your own daily updates")

	ErrUnsupportedFormat = errors.New("export format must be xlsx or csv")
)
