package vacation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/vacation"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

// maxChainLength bounds history walks over originalRequestId links.
const maxChainLength = 50

type VacationServiceImpl struct {
	tx database.Transactor
	vacation.VacationRepository
	user.UserRepository
	notifier notification.Service
	clock    clock.Clock
}

func NewVacationService(
	tx database.Transactor,
	vacationRepo vacation.VacationRepository,
	userRepo user.UserRepository,
	notifier notification.Service,
	clk clock.Clock,
) vacation.VacationService {
	return &VacationServiceImpl{
		tx:                 tx,
		VacationRepository: vacationRepo,
		UserRepository:     userRepo,
		notifier:           notifier,
		clock:              clk,
	}
}

func (s *VacationServiceImpl) get(ctx context.Context, id string) (vacation.VacationRequest, error) {
	v, err := s.VacationRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, vacation.ErrVacationNotFound) {
			return vacation.VacationRequest{}, err
		}
		return vacation.VacationRequest{}, fmt.Errorf("failed to get vacation request: %w", err)
	}
	return v, nil
}

func (s *VacationServiceImpl) displayName(ctx context.Context, userID string) string {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		slog.Warn("Failed to resolve user name", "user_id", userID, "error", err)
		return "A team member"
	}
	return u.FullName
}

func (s *VacationServiceImpl) message(v vacation.VacationRequest, outcome notification.Outcome, actor string) notification.Message {
	msg := notification.Message{
		Kind:      notification.KindVacation,
		Outcome:   outcome,
		RequestID: v.ID,
		ActorName: actor,
		Summary: fmt.Sprintf("%s to %s (%d days)",
			v.StartDate.Format("2006-01-02"), v.EndDate.Format("2006-01-02"), v.TotalDays()),
		Details: []notification.Detail{
			{Label: "From", Value: v.StartDate.Format("Monday, 2 January 2006")},
			{Label: "To", Value: v.EndDate.Format("Monday, 2 January 2006")},
			{Label: "Reason", Value: v.Reason},
		},
	}
	if v.OriginalRequestID != nil {
		msg.Details = append(msg.Details, notification.Detail{Label: "Resubmission of", Value: *v.OriginalRequestID})
	}
	if v.RejectionReason != nil {
		msg.Reason = *v.RejectionReason
	}
	return msg
}

func (s *VacationServiceImpl) publish(v vacation.VacationRequest) vacation.VacationResponse {
	resp := vacation.ToResponse(v)
	s.notifier.Publish(v.UserID, notification.KindVacation.EventName(), resp)
	return resp
}

// create validates and inserts a Pending request; the overlap check and
// the insert share one transaction.
func (s *VacationServiceImpl) create(ctx context.Context, userID string, req vacation.CreateVacationRequest, originalID *string) (vacation.VacationRequest, error) {
	var created vacation.VacationRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		overlap, err := s.VacationRepository.HasOverlap(ctx, userID, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("failed to check overlapping vacations: %w", err)
		}
		if overlap {
			return vacation.ErrVacationOverlap
		}

		created, err = s.VacationRepository.Create(ctx, vacation.VacationRequest{
			UserID:            userID,
			StartDate:         req.Start,
			EndDate:           req.End,
			Reason:            req.Reason,
			Status:            vacation.StatusPending,
			OriginalRequestID: originalID,
		})
		if err != nil {
			if errors.Is(err, vacation.ErrAlreadyResubmitted) {
				return err
			}
			return fmt.Errorf("failed to create vacation request: %w", err)
		}
		return nil
	})
	if err != nil {
		return vacation.VacationRequest{}, err
	}

	s.notifier.NotifyAdmins(ctx, s.message(created, notification.OutcomeSubmitted, s.displayName(ctx, userID)))
	return created, nil
}

// CreateVacation implements vacation.VacationService.
func (s *VacationServiceImpl) CreateVacation(ctx context.Context, userID string, req vacation.CreateVacationRequest) (vacation.VacationResponse, error) {
	if err := req.Validate(); err != nil {
		return vacation.VacationResponse{}, err
	}
	created, err := s.create(ctx, userID, req, nil)
	if err != nil {
		return vacation.VacationResponse{}, err
	}
	return s.publish(created), nil
}

// ResubmitVacation implements vacation.VacationService.
func (s *VacationServiceImpl) ResubmitVacation(ctx context.Context, userID string, originalID string, req vacation.CreateVacationRequest) (vacation.VacationResponse, error) {
	if err := req.Validate(); err != nil {
		return vacation.VacationResponse{}, err
	}

	original, err := s.get(ctx, originalID)
	if err != nil {
		return vacation.VacationResponse{}, err
	}
	if original.UserID != userID {
		return vacation.VacationResponse{}, vacation.ErrVacationAccessDenied
	}
	if original.Status != vacation.StatusRejected {
		return vacation.VacationResponse{}, vacation.ErrVacationNotRejected
	}
	next, err := s.VacationRepository.GetResubmission(ctx, originalID)
	if err != nil {
		return vacation.VacationResponse{}, fmt.Errorf("failed to check resubmission: %w", err)
	}
	if next != nil {
		return vacation.VacationResponse{}, vacation.ErrAlreadyResubmitted
	}

	created, err := s.create(ctx, userID, req, &original.ID)
	if err != nil {
		return vacation.VacationResponse{}, err
	}
	return s.publish(created), nil
}

func (s *VacationServiceImpl) review(ctx context.Context, reviewerID, id string, status vacation.Status, reason *string) (vacation.VacationResponse, error) {
	v, err := s.get(ctx, id)
	if err != nil {
		return vacation.VacationResponse{}, err
	}
	if v.Status != vacation.StatusPending {
		return vacation.VacationResponse{}, vacation.ErrVacationNotPending
	}

	now := s.clock.Now()
	v.Status = status
	v.ReviewedBy = &reviewerID
	v.ReviewedAt = &now
	v.RejectionReason = reason
	if err := s.VacationRepository.UpdateStatus(ctx, v, vacation.StatusPending); err != nil {
		if errors.Is(err, vacation.ErrStatusConflict) {
			return vacation.VacationResponse{}, vacation.ErrVacationNotPending
		}
		return vacation.VacationResponse{}, fmt.Errorf("failed to update vacation request: %w", err)
	}

	outcome := notification.OutcomeApproved
	if status == vacation.StatusRejected {
		outcome = notification.OutcomeRejected
	}
	reviewer := s.displayName(ctx, reviewerID)
	v.ReviewerName = &reviewer
	if err := s.notifier.NotifyUser(ctx, v.UserID, s.message(v, outcome, reviewer)); err != nil {
		slog.Error("Failed to email vacation decision", "vacation_id", v.ID, "user_id", v.UserID, "error", err)
	}

	return s.publish(v), nil
}

// ApproveVacation implements vacation.VacationService.
func (s *VacationServiceImpl) ApproveVacation(ctx context.Context, reviewerID string, id string) (vacation.VacationResponse, error) {
	return s.review(ctx, reviewerID, id, vacation.StatusApproved, nil)
}

// RejectVacation implements vacation.VacationService.
func (s *VacationServiceImpl) RejectVacation(ctx context.Context, reviewerID string, id string, req vacation.RejectVacationRequest) (vacation.VacationResponse, error) {
	if err := req.Validate(); err != nil {
		return vacation.VacationResponse{}, err
	}
	return s.review(ctx, reviewerID, id, vacation.StatusRejected, &req.Reason)
}

// CancelVacation implements vacation.VacationService.
func (s *VacationServiceImpl) CancelVacation(ctx context.Context, actorID string, isAdmin bool, id string) (vacation.VacationResponse, error) {
	v, err := s.get(ctx, id)
	if err != nil {
		return vacation.VacationResponse{}, err
	}
	if !isAdmin && v.UserID != actorID {
		return vacation.VacationResponse{}, vacation.ErrVacationAccessDenied
	}
	if v.Status != vacation.StatusPending && v.Status != vacation.StatusApproved {
		return vacation.VacationResponse{}, vacation.ErrVacationNotCancelable
	}

	from := v.Status
	now := s.clock.Now()
	v.Status = vacation.StatusCancelled
	v.CancelledAt = &now
	if err := s.VacationRepository.UpdateStatus(ctx, v, from); err != nil {
		if errors.Is(err, vacation.ErrStatusConflict) {
			return vacation.VacationResponse{}, vacation.ErrVacationNotCancelable
		}
		return vacation.VacationResponse{}, fmt.Errorf("failed to cancel vacation request: %w", err)
	}

	slog.Info("Vacation request cancelled", "vacation_id", v.ID, "by", actorID, "previous_status", from)
	return s.publish(v), nil
}

// DeleteVacation implements vacation.VacationService.
func (s *VacationServiceImpl) DeleteVacation(ctx context.Context, userID string, id string) error {
	v, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if v.UserID != userID {
		return vacation.ErrVacationAccessDenied
	}
	if v.Status != vacation.StatusPending {
		return vacation.ErrVacationNotPending
	}
	if err := s.VacationRepository.DeletePending(ctx, id); err != nil {
		if errors.Is(err, vacation.ErrVacationNotPending) {
			return err
		}
		return fmt.Errorf("failed to delete vacation request: %w", err)
	}

	s.notifier.Publish(v.UserID, notification.KindVacation.EventName(), map[string]string{"id": id, "deleted": "true"})
	return nil
}

// GetVacationHistory implements vacation.VacationService.
func (s *VacationServiceImpl) GetVacationHistory(ctx context.Context, requesterID string, isAdmin bool, id string) (vacation.HistoryResponse, error) {
	v, err := s.get(ctx, id)
	if err != nil {
		return vacation.HistoryResponse{}, err
	}
	if !isAdmin && v.UserID != requesterID {
		return vacation.HistoryResponse{}, vacation.ErrVacationAccessDenied
	}

	// Walk back to the root.
	chain := []vacation.VacationRequest{v}
	for chain[0].OriginalRequestID != nil && len(chain) < maxChainLength {
		prev, err := s.get(ctx, *chain[0].OriginalRequestID)
		if err != nil {
			return vacation.HistoryResponse{}, err
		}
		chain = append([]vacation.VacationRequest{prev}, chain...)
	}

	// Then forward to the latest resubmission.
	for len(chain) < maxChainLength {
		next, err := s.VacationRepository.GetResubmission(ctx, chain[len(chain)-1].ID)
		if err != nil {
			return vacation.HistoryResponse{}, fmt.Errorf("failed to load resubmission: %w", err)
		}
		if next == nil {
			break
		}
		chain = append(chain, *next)
	}

	resp := vacation.HistoryResponse{
		RootID:   chain[0].ID,
		LatestID: chain[len(chain)-1].ID,
		Requests: make([]vacation.VacationResponse, 0, len(chain)),
	}
	for _, item := range chain {
		resp.Requests = append(resp.Requests, vacation.ToResponse(item))
	}
	return resp, nil
}

// GetVacation implements vacation.VacationService.
func (s *VacationServiceImpl) GetVacation(ctx context.Context, requesterID string, isAdmin bool, id string) (vacation.VacationResponse, error) {
	v, err := s.get(ctx, id)
	if err != nil {
		return vacation.VacationResponse{}, err
	}
	if !isAdmin && v.UserID != requesterID {
		return vacation.VacationResponse{}, vacation.ErrVacationAccessDenied
	}
	return vacation.ToResponse(v), nil
}

// ListMyVacations implements vacation.VacationService.
func (s *VacationServiceImpl) ListMyVacations(ctx context.Context, userID string, filter vacation.VacationFilter) (vacation.ListVacationResponse, error) {
	filter.UserID = nil
	if err := filter.Validate(); err != nil {
		return vacation.ListVacationResponse{}, err
	}
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// ListVacations implements vacation.VacationService.
func (s *VacationServiceImpl) ListVacations(ctx context.Context, filter vacation.VacationFilter) (vacation.ListVacationResponse, error) {
	if err := filter.Validate(); err != nil {
		return vacation.ListVacationResponse{}, err
	}
	return s.list(ctx, filter)
}

func (s *VacationServiceImpl) list(ctx context.Context, filter vacation.VacationFilter) (vacation.ListVacationResponse, error) {
	items, total, err := s.VacationRepository.List(ctx, filter)
	if err != nil {
		return vacation.ListVacationResponse{}, fmt.Errorf("failed to list vacation requests: %w", err)
	}

	out := make([]vacation.VacationResponse, 0, len(items))
	for _, v := range items {
		out = append(out, vacation.ToResponse(v))
	}
	return vacation.ListVacationResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Vacations:  out,
	}, nil
}
