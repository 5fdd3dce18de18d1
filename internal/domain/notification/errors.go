package notification

import "errors"

var (
	ErrRecipientNotFound = errors.New("notification recipient not found")
	ErrInvalidMessage    = errors.New("notification message is incomplete")
)
