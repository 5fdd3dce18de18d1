package exception

import (
	"context"
	"time"
)

type ExceptionRepository interface {
	Create(ctx context.Context, e ExceptionRequest) (ExceptionRequest, error)
	GetByID(ctx context.Context, id string) (ExceptionRequest, error)
	// UpdateReview writes the decision only while the stored row is still
	// Pending; otherwise it returns ErrExceptionNotPending.
	UpdateReview(ctx context.Context, e ExceptionRequest) error
	List(ctx context.Context, filter ExceptionFilter) ([]ExceptionRequest, int64, error)
	HasPending(ctx context.Context, userID string, t Type, date time.Time) (bool, error)
}
