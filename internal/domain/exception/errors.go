package exception

import "errors"

var (
	ErrExceptionNotFound     = errors.New("exception request not found")
	ErrExceptionNotPending   = errors.New("exception request has already been reviewed")
	ErrExceptionFutureDate   = errors.New("exception date cannot be in the future")
	ErrExceptionDuplicate    = errors.New("a pending exception of this type already exists for that date")
	ErrExceptionAccessDenied = errors.New("you are not allowed to access this exception request")
)
