package exception

import "context"

type ExceptionService interface {
	SubmitException(ctx context.Context, userID string, req SubmitExceptionRequest) (ExceptionResponse, error)
	ApproveException(ctx context.Context, reviewerID string, id string) (ExceptionResponse, error)
	RejectException(ctx context.Context, reviewerID string, id string, req RejectExceptionRequest) (ExceptionResponse, error)
	GetException(ctx context.Context, requesterID string, isAdmin bool, id string) (ExceptionResponse, error)
	ListMyExceptions(ctx context.Context, userID string, filter ExceptionFilter) (ListExceptionResponse, error)
	ListExceptions(ctx context.Context, filter ExceptionFilter) (ListExceptionResponse, error)
}
