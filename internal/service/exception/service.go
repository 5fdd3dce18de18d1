package exception

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/exception"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type ExceptionServiceImpl struct {
	exception.ExceptionRepository
	user.UserRepository
	notifier notification.Service
	clock    clock.Clock
	loc      *time.Location
}

func NewExceptionService(
	exceptionRepo exception.ExceptionRepository,
	userRepo user.UserRepository,
	notifier notification.Service,
	clk clock.Clock,
	loc *time.Location,
) exception.ExceptionService {
	return &ExceptionServiceImpl{
		ExceptionRepository: exceptionRepo,
		UserRepository:      userRepo,
		notifier:            notifier,
		clock:               clk,
		loc:                 loc,
	}
}

func (s *ExceptionServiceImpl) today() time.Time {
	now := s.clock.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *ExceptionServiceImpl) message(e exception.ExceptionRequest, outcome notification.Outcome, actor string) notification.Message {
	msg := notification.Message{
		Kind:      notification.KindException,
		Outcome:   outcome,
		RequestID: e.ID,
		ActorName: actor,
		Summary:   fmt.Sprintf("%s on %s", e.Type, e.Date.Format("2006-01-02")),
		Details: []notification.Detail{
			{Label: "Type", Value: string(e.Type)},
			{Label: "Date", Value: e.Date.Format("Monday, 2 January 2006")},
			{Label: "Reason", Value: e.Reason},
		},
	}
	if e.RejectionReason != nil {
		msg.Reason = *e.RejectionReason
	}
	return msg
}

func (s *ExceptionServiceImpl) displayName(ctx context.Context, userID string) string {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		slog.Warn("Failed to resolve user name", "user_id", userID, "error", err)
		return "A team member"
	}
	return u.FullName
}

// SubmitException implements exception.ExceptionService.
func (s *ExceptionServiceImpl) SubmitException(ctx context.Context, userID string, req exception.SubmitExceptionRequest) (exception.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return exception.ExceptionResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)
	if date.After(s.today()) {
		return exception.ExceptionResponse{}, exception.ErrExceptionFutureDate
	}

	dup, err := s.ExceptionRepository.HasPending(ctx, userID, req.Type, date)
	if err != nil {
		return exception.ExceptionResponse{}, fmt.Errorf("failed to check pending exceptions: %w", err)
	}
	if dup {
		return exception.ExceptionResponse{}, exception.ErrExceptionDuplicate
	}

	created, err := s.ExceptionRepository.Create(ctx, exception.ExceptionRequest{
		UserID: userID,
		Type:   req.Type,
		Reason: req.Reason,
		Date:   date,
		Status: exception.StatusPending,
	})
	if err != nil {
		return exception.ExceptionResponse{}, fmt.Errorf("failed to create exception request: %w", err)
	}

	s.notifier.NotifyAdmins(ctx, s.message(created, notification.OutcomeSubmitted, s.displayName(ctx, userID)))

	resp := exception.ToResponse(created)
	s.notifier.Publish(userID, notification.KindException.EventName(), resp)
	return resp, nil
}

func (s *ExceptionServiceImpl) review(ctx context.Context, reviewerID, id string, status exception.Status, reason *string) (exception.ExceptionResponse, error) {
	e, err := s.ExceptionRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, exception.ErrExceptionNotFound) {
			return exception.ExceptionResponse{}, err
		}
		return exception.ExceptionResponse{}, fmt.Errorf("failed to get exception request: %w", err)
	}
	if e.Status != exception.StatusPending {
		return exception.ExceptionResponse{}, exception.ErrExceptionNotPending
	}

	now := s.clock.Now()
	e.Status = status
	e.ReviewedBy = &reviewerID
	e.ReviewedAt = &now
	e.RejectionReason = reason

	if err := s.ExceptionRepository.UpdateReview(ctx, e); err != nil {
		if errors.Is(err, exception.ErrExceptionNotPending) {
			return exception.ExceptionResponse{}, err
		}
		return exception.ExceptionResponse{}, fmt.Errorf("failed to update exception request: %w", err)
	}

	outcome := notification.OutcomeApproved
	if status == exception.StatusRejected {
		outcome = notification.OutcomeRejected
	}
	reviewer := s.displayName(ctx, reviewerID)
	e.ReviewerName = &reviewer
	if err := s.notifier.NotifyUser(ctx, e.UserID, s.message(e, outcome, reviewer)); err != nil {
		slog.Error("Failed to email exception decision", "exception_id", e.ID, "user_id", e.UserID, "error", err)
	}

	resp := exception.ToResponse(e)
	s.notifier.Publish(e.UserID, notification.KindException.EventName(), resp)
	return resp, nil
}

// ApproveException implements exception.ExceptionService.
func (s *ExceptionServiceImpl) ApproveException(ctx context.Context, reviewerID string, id string) (exception.ExceptionResponse, error) {
	return s.review(ctx, reviewerID, id, exception.StatusApproved, nil)
}

// RejectException implements exception.ExceptionService.
func (s *ExceptionServiceImpl) RejectException(ctx context.Context, reviewerID string, id string, req exception.RejectExceptionRequest) (exception.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return exception.ExceptionResponse{}, err
	}
	return s.review(ctx, reviewerID, id, exception.StatusRejected, &req.Reason)
}

// GetException implements exception.ExceptionService.
func (s *ExceptionServiceImpl) GetException(ctx context.Context, requesterID string, isAdmin bool, id string) (exception.ExceptionResponse, error) {
	e, err := s.ExceptionRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, exception.ErrExceptionNotFound) {
			return exception.ExceptionResponse{}, err
		}
		return exception.ExceptionResponse{}, fmt.Errorf("failed to get exception request: %w", err)
	}
	if !isAdmin && e.UserID != requesterID {
		return exception.ExceptionResponse{}, exception.ErrExceptionAccessDenied
	}
	return exception.ToResponse(e), nil
}

// ListMyExceptions implements exception.ExceptionService.
func (s *ExceptionServiceImpl) ListMyExceptions(ctx context.Context, userID string, filter exception.ExceptionFilter) (exception.ListExceptionResponse, error) {
	filter.UserID = &userID
	return s.ListExceptions(ctx, filter)
}

// ListExceptions implements exception.ExceptionService.
func (s *ExceptionServiceImpl) ListExceptions(ctx context.Context, filter exception.ExceptionFilter) (exception.ListExceptionResponse, error) {
	if err := filter.Validate(); err != nil {
		return exception.ListExceptionResponse{}, err
	}
	items, total, err := s.ExceptionRepository.List(ctx, filter)
	if err != nil {
		return exception.ListExceptionResponse{}, fmt.Errorf("failed to list exception requests: %w", err)
	}

	out := make([]exception.ExceptionResponse, 0, len(items))
	for _, e := range items {
		out = append(out, exception.ToResponse(e))
	}
	return exception.ListExceptionResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Exceptions: out,
	}, nil
}
