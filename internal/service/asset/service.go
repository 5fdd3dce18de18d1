package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/asset"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type AssetServiceImpl struct {
	tx database.Transactor
	asset.AssetRepository
	asset.AssignmentRepository
	asset.RequestRepository
	user.UserRepository
	notifier notification.Service
	clock    clock.Clock
	loc      *time.Location
}

func NewAssetService(
	tx database.Transactor,
	assetRepo asset.AssetRepository,
	assignmentRepo asset.AssignmentRepository,
	requestRepo asset.RequestRepository,
	userRepo user.UserRepository,
	notifier notification.Service,
	clk clock.Clock,
	loc *time.Location,
) asset.AssetService {
	return &AssetServiceImpl{
		tx:                   tx,
		AssetRepository:      assetRepo,
		AssignmentRepository: assignmentRepo,
		RequestRepository:    requestRepo,
		UserRepository:       userRepo,
		notifier:             notifier,
		clock:                clk,
		loc:                  loc,
	}
}

func (s *AssetServiceImpl) today() time.Time {
	now := s.clock.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	t, ok := validator.IsValidDate(*v)
	if !ok {
		return nil
	}
	return &t
}

func (s *AssetServiceImpl) getAsset(ctx context.Context, id string) (asset.Asset, error) {
	a, err := s.AssetRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			return asset.Asset{}, err
		}
		return asset.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}
	return a, nil
}

func (s *AssetServiceImpl) getRequest(ctx context.Context, id string) (asset.Request, error) {
	r, err := s.RequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, asset.ErrRequestNotFound) {
			return asset.Request{}, err
		}
		return asset.Request{}, fmt.Errorf("failed to get asset request: %w", err)
	}
	return r, nil
}

// CreateAsset implements asset.AssetService.
func (s *AssetServiceImpl) CreateAsset(ctx context.Context, req asset.CreateAssetRequest) (asset.AssetResponse, error) {
	if err := req.Validate(); err != nil {
		return asset.AssetResponse{}, err
	}

	created, err := s.AssetRepository.Create(ctx, asset.Asset{
		Name:            req.Name,
		Category:        req.Category,
		SerialNumber:    req.SerialNumber,
		Status:          asset.StatusAvailable,
		PurchaseDate:    parseDate(req.PurchaseDate),
		PurchaseCost:    req.PurchaseCost,
		ProofOfPurchase: req.ProofOfPurchase,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, asset.ErrSerialNumberExists) {
			return asset.AssetResponse{}, err
		}
		return asset.AssetResponse{}, fmt.Errorf("failed to create asset: %w", err)
	}
	return asset.ToAssetResponse(created), nil
}

// UpdateAsset implements asset.AssetService.
func (s *AssetServiceImpl) UpdateAsset(ctx context.Context, id string, req asset.UpdateAssetRequest) (asset.AssetResponse, error) {
	if err := req.Validate(); err != nil {
		return asset.AssetResponse{}, err
	}

	a, err := s.getAsset(ctx, id)
	if err != nil {
		return asset.AssetResponse{}, err
	}

	if req.Status != nil && *req.Status != a.Status {
		if *req.Status == asset.StatusAssigned {
			return asset.AssetResponse{}, asset.ErrInvalidStatusChange
		}
		if a.Status == asset.StatusAssigned {
			return asset.AssetResponse{}, asset.ErrAssetHasActiveAssignment
		}
		a.Status = *req.Status
	}
	if req.Name != nil {
		a.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		a.Category = strings.TrimSpace(*req.Category)
	}
	if req.SerialNumber != nil {
		a.SerialNumber = req.SerialNumber
	}
	if req.PurchaseDate != nil {
		a.PurchaseDate = parseDate(req.PurchaseDate)
	}
	if req.PurchaseCost != nil {
		a.PurchaseCost = req.PurchaseCost
	}
	if req.ProofOfPurchase != nil {
		a.ProofOfPurchase = req.ProofOfPurchase
		if *req.ProofOfPurchase == "" {
			a.ProofOfPurchase = nil
		}
	}
	if req.Notes != nil {
		a.Notes = req.Notes
	}

	if err := s.AssetRepository.Update(ctx, a); err != nil {
		if errors.Is(err, asset.ErrSerialNumberExists) || errors.Is(err, asset.ErrAssetNotFound) {
			return asset.AssetResponse{}, err
		}
		return asset.AssetResponse{}, fmt.Errorf("failed to update asset: %w", err)
	}
	return asset.ToAssetResponse(a), nil
}

// DeleteAsset implements asset.AssetService.
func (s *AssetServiceImpl) DeleteAsset(ctx context.Context, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.getAsset(ctx, id); err != nil {
			return err
		}
		active, err := s.AssignmentRepository.GetActiveByAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check asset assignment: %w", err)
		}
		if active != nil {
			return asset.ErrAssetHasActiveAssignment
		}
		if err := s.AssetRepository.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}
		return nil
	})
}

// GetAsset implements asset.AssetService.
func (s *AssetServiceImpl) GetAsset(ctx context.Context, id string) (asset.AssetResponse, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return asset.AssetResponse{}, err
	}
	return asset.ToAssetResponse(a), nil
}

// ListAssets implements asset.AssetService.
func (s *AssetServiceImpl) ListAssets(ctx context.Context, filter asset.AssetFilter) (asset.ListAssetResponse, error) {
	if err := filter.Validate(); err != nil {
		return asset.ListAssetResponse{}, err
	}
	items, total, err := s.AssetRepository.List(ctx, filter)
	if err != nil {
		return asset.ListAssetResponse{}, fmt.Errorf("failed to list assets: %w", err)
	}
	out := make([]asset.AssetResponse, 0, len(items))
	for _, a := range items {
		out = append(out, asset.ToAssetResponse(a))
	}
	return asset.ListAssetResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Assets:     out,
	}, nil
}

// assign flips the asset to Assigned and opens an assignment. It must run
// inside a transaction.
func (s *AssetServiceImpl) assign(ctx context.Context, adminID, assetID, userID string, expected *time.Time, notes *string, category string) (asset.Assignment, asset.Asset, error) {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return asset.Assignment{}, asset.Asset{}, asset.ErrUserNotEligible
		}
		return asset.Assignment{}, asset.Asset{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !u.IsActive {
		return asset.Assignment{}, asset.Asset{}, asset.ErrUserNotEligible
	}

	a, err := s.getAsset(ctx, assetID)
	if err != nil {
		return asset.Assignment{}, asset.Asset{}, err
	}
	if category != "" && !strings.EqualFold(a.Category, category) {
		return asset.Assignment{}, asset.Asset{}, asset.ErrCategoryMismatch
	}
	if a.Status != asset.StatusAvailable {
		return asset.Assignment{}, asset.Asset{}, asset.ErrAssetNotAvailable
	}

	if err := s.AssetRepository.SetStatus(ctx, a.ID, asset.StatusAvailable, asset.StatusAssigned); err != nil {
		if errors.Is(err, asset.ErrAssetNotAvailable) {
			return asset.Assignment{}, asset.Asset{}, err
		}
		return asset.Assignment{}, asset.Asset{}, fmt.Errorf("failed to update asset status: %w", err)
	}

	created, err := s.AssignmentRepository.Create(ctx, asset.Assignment{
		AssetID:            a.ID,
		UserID:             userID,
		AssignedBy:         adminID,
		IssueDate:          s.today(),
		ExpectedReturnDate: expected,
		Status:             asset.AssignmentActive,
		Notes:              notes,
	})
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotAvailable) {
			return asset.Assignment{}, asset.Asset{}, err
		}
		return asset.Assignment{}, asset.Asset{}, fmt.Errorf("failed to create assignment: %w", err)
	}
	created.AssetName = &a.Name
	created.UserName = &u.FullName
	a.Status = asset.StatusAssigned
	return created, a, nil
}

// AssignAsset implements asset.AssetService.
func (s *AssetServiceImpl) AssignAsset(ctx context.Context, adminID string, req asset.AssignAssetRequest) (asset.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return asset.AssignmentResponse{}, err
	}

	var assignment asset.Assignment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		assignment, _, err = s.assign(ctx, adminID, req.AssetID, req.UserID, parseDate(req.ExpectedReturnDate), req.Notes, "")
		return err
	})
	if err != nil {
		return asset.AssignmentResponse{}, err
	}

	resp := asset.ToAssignmentResponse(assignment)
	s.notifier.Publish(assignment.UserID, notification.KindAssignment.EventName(), resp)
	return resp, nil
}

// ReturnAsset implements asset.AssetService.
func (s *AssetServiceImpl) ReturnAsset(ctx context.Context, actorID string, isAdmin bool, assignmentID string, req asset.ReturnAssetRequest) (asset.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return asset.AssignmentResponse{}, err
	}

	var assignment asset.Assignment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		assignment, err = s.AssignmentRepository.GetByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, asset.ErrAssignmentNotFound) {
				return err
			}
			return fmt.Errorf("failed to get assignment: %w", err)
		}
		if !isAdmin && assignment.UserID != actorID {
			return asset.ErrAssignmentForbidden
		}
		if assignment.Status != asset.AssignmentActive {
			return asset.ErrAssignmentNotActive
		}

		today := s.today()
		assignment.Status = asset.AssignmentReturned
		assignment.ReturnDate = &today
		assignment.Condition = &req.Condition
		if req.Notes != nil {
			assignment.Notes = req.Notes
		}
		if err := s.AssignmentRepository.MarkReturned(ctx, assignment); err != nil {
			if errors.Is(err, asset.ErrAssignmentNotActive) {
				return err
			}
			return fmt.Errorf("failed to return asset: %w", err)
		}
		if err := s.AssetRepository.SetStatus(ctx, assignment.AssetID, asset.StatusAssigned, asset.StatusAvailable); err != nil {
			return fmt.Errorf("failed to release asset: %w", err)
		}
		return nil
	})
	if err != nil {
		return asset.AssignmentResponse{}, err
	}

	resp := asset.ToAssignmentResponse(assignment)
	s.notifier.Publish(assignment.UserID, notification.KindAssignment.EventName(), resp)
	return resp, nil
}

func (s *AssetServiceImpl) listAssignments(ctx context.Context, filter asset.AssignmentFilter) (asset.ListAssignmentResponse, error) {
	if err := filter.Validate(); err != nil {
		return asset.ListAssignmentResponse{}, err
	}
	items, total, err := s.AssignmentRepository.List(ctx, filter)
	if err != nil {
		return asset.ListAssignmentResponse{}, fmt.Errorf("failed to list assignments: %w", err)
	}
	out := make([]asset.AssignmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, asset.ToAssignmentResponse(a))
	}
	return asset.ListAssignmentResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  validator.TotalPages(total, filter.Limit),
		Showing:     fmt.Sprintf("%d of %d", len(out), total),
		Assignments: out,
	}, nil
}

// ListAssignments implements asset.AssetService.
func (s *AssetServiceImpl) ListAssignments(ctx context.Context, filter asset.AssignmentFilter) (asset.ListAssignmentResponse, error) {
	return s.listAssignments(ctx, filter)
}

// ListMyAssignments implements asset.AssetService.
func (s *AssetServiceImpl) ListMyAssignments(ctx context.Context, userID string, filter asset.AssignmentFilter) (asset.ListAssignmentResponse, error) {
	filter.UserID = &userID
	return s.listAssignments(ctx, filter)
}

func (s *AssetServiceImpl) message(r asset.Request, outcome notification.Outcome, actor string, assigned *asset.Asset) notification.Message {
	msg := notification.Message{
		Kind:      notification.KindAssetRequest,
		Outcome:   outcome,
		RequestID: r.ID,
		ActorName: actor,
		Summary:   fmt.Sprintf("%s (%s urgency)", r.Category, r.Urgency),
		Details: []notification.Detail{
			{Label: "Category", Value: r.Category},
			{Label: "Urgency", Value: string(r.Urgency)},
			{Label: "Reason", Value: r.Reason},
		},
	}
	if assigned != nil {
		value := assigned.Name
		if assigned.SerialNumber != nil {
			value += " (" + *assigned.SerialNumber + ")"
		}
		msg.Details = append(msg.Details, notification.Detail{Label: "Assigned asset", Value: value})
	}
	if r.RejectionReason != nil {
		msg.Reason = *r.RejectionReason
	}
	return msg
}

func (s *AssetServiceImpl) displayName(ctx context.Context, userID string) string {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		slog.Warn("Failed to resolve user name", "user_id", userID, "error", err)
		return "A team member"
	}
	return u.FullName
}

func (s *AssetServiceImpl) notifyDecision(ctx context.Context, r asset.Request, outcome notification.Outcome, adminID string, assigned *asset.Asset) {
	if err := s.notifier.NotifyUser(ctx, r.UserID, s.message(r, outcome, s.displayName(ctx, adminID), assigned)); err != nil {
		slog.Error("Failed to email asset request decision", "request_id", r.ID, "user_id", r.UserID, "error", err)
	}
}

// CreateRequest implements asset.AssetService.
func (s *AssetServiceImpl) CreateRequest(ctx context.Context, userID string, req asset.CreateRequestRequest) (asset.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return asset.RequestResponse{}, err
	}

	created, err := s.RequestRepository.Create(ctx, asset.Request{
		UserID:   userID,
		Category: req.Category,
		Reason:   req.Reason,
		Urgency:  req.Urgency,
		Status:   asset.RequestPending,
	})
	if err != nil {
		return asset.RequestResponse{}, fmt.Errorf("failed to create asset request: %w", err)
	}

	s.notifier.NotifyAdmins(ctx, s.message(created, notification.OutcomeSubmitted, s.displayName(ctx, userID), nil))

	resp := asset.ToRequestResponse(created)
	s.notifier.Publish(userID, notification.KindAssetRequest.EventName(), resp)
	return resp, nil
}

// bind fulfils r with the given asset inside one transaction: the request
// moves from -> Fulfilled and the asset is assigned to the requester.
func (s *AssetServiceImpl) bind(ctx context.Context, adminID string, r *asset.Request, from asset.RequestStatus, assetID string, expected *time.Time) (asset.Asset, error) {
	var assigned asset.Asset
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		r.Status = asset.RequestFulfilled
		r.ApprovedBy = &adminID
		r.AssignedAssetID = &assetID
		if r.DecidedAt == nil {
			r.DecidedAt = &now
		}
		if err := s.RequestRepository.UpdateDecision(ctx, *r, from); err != nil {
			if errors.Is(err, asset.ErrRequestNotPending) {
				return err
			}
			return fmt.Errorf("failed to update asset request: %w", err)
		}

		var err error
		_, assigned, err = s.assign(ctx, adminID, assetID, r.UserID, expected, nil, r.Category)
		return err
	})
	return assigned, err
}

// ApproveRequest implements asset.AssetService. With an asset the approval
// and the assignment commit together or not at all.
func (s *AssetServiceImpl) ApproveRequest(ctx context.Context, adminID string, id string, req asset.ApproveRequestRequest) (asset.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return asset.RequestResponse{}, err
	}

	r, err := s.getRequest(ctx, id)
	if err != nil {
		return asset.RequestResponse{}, err
	}
	if r.Status != asset.RequestPending {
		return asset.RequestResponse{}, asset.ErrRequestNotPending
	}

	var assigned *asset.Asset
	if req.AssetID != nil {
		a, err := s.bind(ctx, adminID, &r, asset.RequestPending, *req.AssetID, parseDate(req.ExpectedReturnDate))
		if err != nil {
			return asset.RequestResponse{}, err
		}
		assigned = &a
	} else {
		now := s.clock.Now()
		r.Status = asset.RequestApproved
		r.ApprovedBy = &adminID
		r.DecidedAt = &now
		if err := s.RequestRepository.UpdateDecision(ctx, r, asset.RequestPending); err != nil {
			if errors.Is(err, asset.ErrRequestNotPending) {
				return asset.RequestResponse{}, err
			}
			return asset.RequestResponse{}, fmt.Errorf("failed to approve asset request: %w", err)
		}
	}

	s.notifyDecision(ctx, r, notification.OutcomeApproved, adminID, assigned)

	resp := asset.ToRequestResponse(r)
	s.notifier.Publish(r.UserID, notification.KindAssetRequest.EventName(), resp)
	return resp, nil
}

// FulfillRequest implements asset.AssetService.
func (s *AssetServiceImpl) FulfillRequest(ctx context.Context, adminID string, id string, req asset.FulfillRequestRequest) (asset.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return asset.RequestResponse{}, err
	}

	r, err := s.getRequest(ctx, id)
	if err != nil {
		return asset.RequestResponse{}, err
	}
	if r.Status != asset.RequestApproved {
		return asset.RequestResponse{}, asset.ErrRequestNotApproved
	}

	if _, err := s.bind(ctx, adminID, &r, asset.RequestApproved, req.AssetID, parseDate(req.ExpectedReturnDate)); err != nil {
		if errors.Is(err, asset.ErrRequestNotPending) {
			return asset.RequestResponse{}, asset.ErrRequestNotApproved
		}
		return asset.RequestResponse{}, err
	}

	resp := asset.ToRequestResponse(r)
	s.notifier.Publish(r.UserID, notification.KindAssetRequest.EventName(), resp)
	return resp, nil
}

// RejectRequest implements asset.AssetService.
func (s *AssetServiceImpl) RejectRequest(ctx context.Context, adminID string, id string, req asset.RejectRequestRequest) (asset.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return asset.RequestResponse{}, err
	}

	r, err := s.getRequest(ctx, id)
	if err != nil {
		return asset.RequestResponse{}, err
	}
	if r.Status != asset.RequestPending {
		return asset.RequestResponse{}, asset.ErrRequestNotPending
	}

	now := s.clock.Now()
	r.Status = asset.RequestRejected
	r.ApprovedBy = &adminID
	r.RejectionReason = &req.Reason
	r.DecidedAt = &now
	if err := s.RequestRepository.UpdateDecision(ctx, r, asset.RequestPending); err != nil {
		if errors.Is(err, asset.ErrRequestNotPending) {
			return asset.RequestResponse{}, err
		}
		return asset.RequestResponse{}, fmt.Errorf("failed to reject asset request: %w", err)
	}

	s.notifyDecision(ctx, r, notification.OutcomeRejected, adminID, nil)

	resp := asset.ToRequestResponse(r)
	s.notifier.Publish(r.UserID, notification.KindAssetRequest.EventName(), resp)
	return resp, nil
}

// GetRequest implements asset.AssetService.
func (s *AssetServiceImpl) GetRequest(ctx context.Context, requesterID string, isAdmin bool, id string) (asset.RequestResponse, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return asset.RequestResponse{}, err
	}
	if !isAdmin && r.UserID != requesterID {
		return asset.RequestResponse{}, asset.ErrRequestAccessDenied
	}
	return asset.ToRequestResponse(r), nil
}

// ListRequests implements asset.AssetService.
func (s *AssetServiceImpl) ListRequests(ctx context.Context, filter asset.RequestFilter) (asset.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return asset.ListRequestResponse{}, err
	}
	items, total, err := s.RequestRepository.List(ctx, filter)
	if err != nil {
		return asset.ListRequestResponse{}, fmt.Errorf("failed to list asset requests: %w", err)
	}
	out := make([]asset.RequestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, asset.ToRequestResponse(r))
	}
	return asset.ListRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Requests:   out,
	}, nil
}

// ListMyRequests implements asset.AssetService.
func (s *AssetServiceImpl) ListMyRequests(ctx context.Context, userID string, filter asset.RequestFilter) (asset.ListRequestResponse, error) {
	filter.UserID = &userID
	return s.ListRequests(ctx, filter)
}
