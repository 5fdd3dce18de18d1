package supply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/supply"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

type SupplyServiceImpl struct {
	tx database.Transactor
	supply.SupplyRepository
	supply.RequestRepository
	user.UserRepository
	notifier notification.Service
	clock    clock.Clock
}

func NewSupplyService(
	tx database.Transactor,
	supplyRepo supply.SupplyRepository,
	requestRepo supply.RequestRepository,
	userRepo user.UserRepository,
	notifier notification.Service,
	clk clock.Clock,
) supply.SupplyService {
	return &SupplyServiceImpl{
		tx:                tx,
		SupplyRepository:  supplyRepo,
		RequestRepository: requestRepo,
		UserRepository:    userRepo,
		notifier:          notifier,
		clock:             clk,
	}
}

func (s *SupplyServiceImpl) getSupply(ctx context.Context, id string) (supply.Supply, error) {
	item, err := s.SupplyRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, supply.ErrSupplyNotFound) {
			return supply.Supply{}, err
		}
		return supply.Supply{}, fmt.Errorf("failed to get office supply: %w", err)
	}
	return item, nil
}

func (s *SupplyServiceImpl) getRequest(ctx context.Context, id string) (supply.Request, error) {
	r, err := s.RequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, supply.ErrRequestNotFound) {
			return supply.Request{}, err
		}
		return supply.Request{}, fmt.Errorf("failed to get supply request: %w", err)
	}
	return r, nil
}

// CreateSupply implements supply.SupplyService.
func (s *SupplyServiceImpl) CreateSupply(ctx context.Context, req supply.CreateSupplyRequest) (supply.SupplyResponse, error) {
	if err := req.Validate(); err != nil {
		return supply.SupplyResponse{}, err
	}

	created, err := s.SupplyRepository.Create(ctx, supply.Supply{
		Name:            req.Name,
		Category:        req.Category,
		Unit:            req.Unit,
		Quantity:        req.Quantity,
		MinimumStock:    req.MinimumStock,
		ProofOfPurchase: req.ProofOfPurchase,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, supply.ErrSupplyNameExists) {
			return supply.SupplyResponse{}, err
		}
		return supply.SupplyResponse{}, fmt.Errorf("failed to create office supply: %w", err)
	}
	return supply.ToSupplyResponse(created), nil
}

// UpdateSupply implements supply.SupplyService.
func (s *SupplyServiceImpl) UpdateSupply(ctx context.Context, id string, req supply.UpdateSupplyRequest) (supply.SupplyResponse, error) {
	if err := req.Validate(); err != nil {
		return supply.SupplyResponse{}, err
	}

	item, err := s.getSupply(ctx, id)
	if err != nil {
		return supply.SupplyResponse{}, err
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Unit != nil {
		item.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.MinimumStock != nil {
		item.MinimumStock = *req.MinimumStock
	}
	if req.ProofOfPurchase != nil {
		item.ProofOfPurchase = req.ProofOfPurchase
		if *req.ProofOfPurchase == "" {
			item.ProofOfPurchase = nil
		}
	}
	if req.Notes != nil {
		item.Notes = req.Notes
	}

	if err := s.SupplyRepository.Update(ctx, item); err != nil {
		if errors.Is(err, supply.ErrSupplyNameExists) || errors.Is(err, supply.ErrSupplyNotFound) {
			return supply.SupplyResponse{}, err
		}
		return supply.SupplyResponse{}, fmt.Errorf("failed to update office supply: %w", err)
	}
	return supply.ToSupplyResponse(item), nil
}

// DeleteSupply implements supply.SupplyService.
func (s *SupplyServiceImpl) DeleteSupply(ctx context.Context, id string) error {
	if _, err := s.getSupply(ctx, id); err != nil {
		return err
	}
	if err := s.SupplyRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, supply.ErrSupplyInUse) {
			return err
		}
		return fmt.Errorf("failed to delete office supply: %w", err)
	}
	return nil
}

// GetSupply implements supply.SupplyService.
func (s *SupplyServiceImpl) GetSupply(ctx context.Context, id string) (supply.SupplyResponse, error) {
	item, err := s.getSupply(ctx, id)
	if err != nil {
		return supply.SupplyResponse{}, err
	}
	return supply.ToSupplyResponse(item), nil
}

// ListSupplies implements supply.SupplyService.
func (s *SupplyServiceImpl) ListSupplies(ctx context.Context, filter supply.SupplyFilter) (supply.ListSupplyResponse, error) {
	if err := filter.Validate(); err != nil {
		return supply.ListSupplyResponse{}, err
	}
	items, total, err := s.SupplyRepository.List(ctx, filter)
	if err != nil {
		return supply.ListSupplyResponse{}, fmt.Errorf("failed to list office supplies: %w", err)
	}
	out := make([]supply.SupplyResponse, 0, len(items))
	for _, item := range items {
		out = append(out, supply.ToSupplyResponse(item))
	}
	return supply.ListSupplyResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Supplies:   out,
	}, nil
}

// ListLowStock implements supply.SupplyService.
func (s *SupplyServiceImpl) ListLowStock(ctx context.Context) ([]supply.SupplyResponse, error) {
	items, err := s.SupplyRepository.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock supplies: %w", err)
	}
	out := make([]supply.SupplyResponse, 0, len(items))
	for _, item := range items {
		out = append(out, supply.ToSupplyResponse(item))
	}
	return out, nil
}

func (s *SupplyServiceImpl) displayName(ctx context.Context, userID string) string {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		slog.Warn("Failed to resolve user name", "user_id", userID, "error", err)
		return "A team member"
	}
	return u.FullName
}

func message(r supply.Request, item supply.Supply, outcome notification.Outcome, actor string) notification.Message {
	msg := notification.Message{
		Kind:      notification.KindSupplyRequest,
		Outcome:   outcome,
		RequestID: r.ID,
		ActorName: actor,
		Summary:   fmt.Sprintf("%d %s of %s", r.Quantity, item.Unit, item.Name),
		Details: []notification.Detail{
			{Label: "Item", Value: item.Name},
			{Label: "Quantity", Value: strconv.Itoa(r.Quantity) + " " + item.Unit},
			{Label: "Urgency", Value: string(r.Urgency)},
			{Label: "Reason", Value: r.Reason},
		},
	}
	if r.RejectionReason != nil {
		msg.Reason = *r.RejectionReason
	}
	return msg
}

func (s *SupplyServiceImpl) decorate(r *supply.Request, item supply.Supply) {
	r.SupplyName = &item.Name
	r.Unit = &item.Unit
}

func (s *SupplyServiceImpl) notifyDecision(ctx context.Context, r supply.Request, outcome notification.Outcome, adminID string) {
	item, err := s.getSupply(ctx, r.SupplyID)
	if err != nil {
		slog.Error("Failed to load supply for notification", "request_id", r.ID, "error", err)
		return
	}
	if err := s.notifier.NotifyUser(ctx, r.UserID, message(r, item, outcome, s.displayName(ctx, adminID))); err != nil {
		slog.Error("Failed to email supply request decision", "request_id", r.ID, "user_id", r.UserID, "error", err)
	}
}

// CreateRequest implements supply.SupplyService.
func (s *SupplyServiceImpl) CreateRequest(ctx context.Context, userID string, req supply.CreateRequestRequest) (supply.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return supply.RequestResponse{}, err
	}

	item, err := s.getSupply(ctx, req.SupplyID)
	if err != nil {
		return supply.RequestResponse{}, err
	}

	created, err := s.RequestRepository.Create(ctx, supply.Request{
		UserID:   userID,
		SupplyID: item.ID,
		Quantity: req.Quantity,
		Reason:   req.Reason,
		Urgency:  req.Urgency,
		Status:   supply.RequestPending,
	})
	if err != nil {
		return supply.RequestResponse{}, fmt.Errorf("failed to create supply request: %w", err)
	}
	s.decorate(&created, item)

	s.notifier.NotifyAdmins(ctx, message(created, item, notification.OutcomeSubmitted, s.displayName(ctx, userID)))

	resp := supply.ToRequestResponse(created)
	s.notifier.Publish(userID, notification.KindSupplyRequest.EventName(), resp)
	return resp, nil
}

func (s *SupplyServiceImpl) decide(ctx context.Context, r *supply.Request, from supply.RequestStatus) error {
	if err := s.RequestRepository.UpdateDecision(ctx, *r, from); err != nil {
		if errors.Is(err, supply.ErrRequestNotPending) {
			return err
		}
		return fmt.Errorf("failed to update supply request: %w", err)
	}
	return nil
}

// ApproveRequest implements supply.SupplyService.
func (s *SupplyServiceImpl) ApproveRequest(ctx context.Context, adminID string, id string) (supply.RequestResponse, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return supply.RequestResponse{}, err
	}
	if r.Status != supply.RequestPending {
		return supply.RequestResponse{}, supply.ErrRequestNotPending
	}

	now := s.clock.Now()
	r.Status = supply.RequestApproved
	r.ApprovedBy = &adminID
	r.DecidedAt = &now
	if err := s.decide(ctx, &r, supply.RequestPending); err != nil {
		return supply.RequestResponse{}, err
	}

	s.notifyDecision(ctx, r, notification.OutcomeApproved, adminID)

	resp := supply.ToRequestResponse(r)
	s.notifier.Publish(r.UserID, notification.KindSupplyRequest.EventName(), resp)
	return resp, nil
}

// RejectRequest implements supply.SupplyService.
func (s *SupplyServiceImpl) RejectRequest(ctx context.Context, adminID string, id string, req supply.RejectRequestRequest) (supply.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return supply.RequestResponse{}, err
	}

	r, err := s.getRequest(ctx, id)
	if err != nil {
		return supply.RequestResponse{}, err
	}
	if r.Status != supply.RequestPending {
		return supply.RequestResponse{}, supply.ErrRequestNotPending
	}

	now := s.clock.Now()
	r.Status = supply.RequestRejected
	r.ApprovedBy = &adminID
	r.RejectionReason = &req.Reason
	r.DecidedAt = &now
	if err := s.decide(ctx, &r, supply.RequestPending); err != nil {
		return supply.RequestResponse{}, err
	}

	s.notifyDecision(ctx, r, notification.OutcomeRejected, adminID)

	resp := supply.ToRequestResponse(r)
	s.notifier.Publish(r.UserID, notification.KindSupplyRequest.EventName(), resp)
	return resp, nil
}

// FulfillRequest implements supply.SupplyService.
func (s *SupplyServiceImpl) FulfillRequest(ctx context.Context, adminID string, id string) (supply.RequestResponse, error) {
	var (
		r         supply.Request
		remaining int
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		r, err = s.getRequest(ctx, id)
		if err != nil {
			return err
		}
		if r.Status != supply.RequestApproved {
			return supply.ErrRequestNotApproved
		}

		now := s.clock.Now()
		r.Status = supply.RequestFulfilled
		r.FulfilledAt = &now
		if err := s.decide(ctx, &r, supply.RequestApproved); err != nil {
			if errors.Is(err, supply.ErrRequestNotPending) {
				return supply.ErrRequestNotApproved
			}
			return err
		}

		remaining, err = s.SupplyRepository.Decrement(ctx, r.SupplyID, r.Quantity)
		if err != nil {
			if errors.Is(err, supply.ErrInsufficientStock) || errors.Is(err, supply.ErrSupplyNotFound) {
				return err
			}
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return supply.RequestResponse{}, err
	}

	if item, err := s.getSupply(ctx, r.SupplyID); err == nil {
		s.decorate(&r, item)
		if item.LowStock() {
			slog.Warn("Office supply at or below minimum stock",
				"supply_id", item.ID, "name", item.Name, "quantity", remaining, "minimum", item.MinimumStock)
		}
	}

	resp := supply.ToRequestResponse(r)
	s.notifier.Publish(r.UserID, notification.KindSupplyRequest.EventName(), resp)
	return resp, nil
}

// GetRequest implements supply.SupplyService.
func (s *SupplyServiceImpl) GetRequest(ctx context.Context, requesterID string, isAdmin bool, id string) (supply.RequestResponse, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return supply.RequestResponse{}, err
	}
	if !isAdmin && r.UserID != requesterID {
		return supply.RequestResponse{}, supply.ErrRequestForbidden
	}
	return supply.ToRequestResponse(r), nil
}

// ListRequests implements supply.SupplyService.
func (s *SupplyServiceImpl) ListRequests(ctx context.Context, filter supply.RequestFilter) (supply.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return supply.ListRequestResponse{}, err
	}
	items, total, err := s.RequestRepository.List(ctx, filter)
	if err != nil {
		return supply.ListRequestResponse{}, fmt.Errorf("failed to list supply requests: %w", err)
	}
	out := make([]supply.RequestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, supply.ToRequestResponse(r))
	}
	return supply.ListRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Requests:   out,
	}, nil
}

// ListMyRequests implements supply.SupplyService.
func (s *SupplyServiceImpl) ListMyRequests(ctx context.Context, userID string, filter supply.RequestFilter) (supply.ListRequestResponse, error) {
	filter.UserID = &userID
	return s.ListRequests(ctx, filter)
}
