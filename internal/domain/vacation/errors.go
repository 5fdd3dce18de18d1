package vacation

import "errors"

var (
	ErrVacationNotFound      = errors.New("vacation request not found")
	ErrVacationOverlap       = errors.New("vacation dates overlap an existing pending or approved request")
	ErrVacationNotPending    = errors.New("only pending vacation requests can be changed this way")
	ErrVacationNotCancelable = errors.New("only pending or approved vacation requests can be cancelled")
	ErrVacationNotRejected   = errors.New("only rejected vacation requests can be resubmitted")
	ErrAlreadyResubmitted    = errors.New("this vacation request has already been resubmitted")
	ErrVacationAccessDenied  = errors.New("you are not allowed to access this vacation request")
	ErrStatusConflict        = errors.New("vacation request was changed by someone else")
)
