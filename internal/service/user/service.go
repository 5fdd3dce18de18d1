package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/auth"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	tokens auth.RefreshTokenRepository
}

func NewUserService(tx database.Transactor, userRepository user.UserRepository, tokens auth.RefreshTokenRepository) user.UserService {
	return &UserServiceImpl{
		tx:             tx,
		UserRepository: userRepository,
		tokens:         tokens,
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func (s *UserServiceImpl) get(ctx context.Context, id string) (user.User, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// CreateUser implements user.UserService.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	created, err := s.UserRepository.Create(ctx, user.User{
		Email:        req.Email,
		PasswordHash: &hashed,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         user.Role(req.Role),
		Department:   trimmed(req.Department),
		Designation:  trimmed(req.Designation),
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user.ToResponse(created), nil
}

// UpdateUser implements user.UserService.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, actorID string, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.get(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}

	if u.ID == actorID {
		if req.IsActive != nil && !*req.IsActive {
			return user.UserResponse{}, user.ErrCannotDeactivateSelf
		}
		if req.Role != nil && user.Role(*req.Role) != u.Role {
			return user.UserResponse{}, user.ErrAdminPrivilegeRequired
		}
	}

	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		u.Role = user.Role(*req.Role)
	}
	if req.Department != nil {
		u.Department = trimmed(req.Department)
	}
	if req.Designation != nil {
		u.Designation = trimmed(req.Designation)
	}
	deactivating := req.IsActive != nil && !*req.IsActive && u.IsActive
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.UserRepository.Update(ctx, u); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if deactivating {
			if err := s.tokens.RevokeAllForUser(ctx, u.ID); err != nil {
				return fmt.Errorf("failed to revoke sessions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// GetUser implements user.UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// ListUsers implements user.UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	if err := filter.Validate(); err != nil {
		return user.ListUserResponse{}, err
	}
	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, user.ToResponse(u))
	}
	return user.ListUserResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Showing:    fmt.Sprintf("%d of %d", len(out), total),
		Users:      out,
	}, nil
}

// DeactivateUser implements user.UserService.
func (s *UserServiceImpl) DeactivateUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return user.ErrCannotDeactivateSelf
	}
	active := false
	_, err := s.UpdateUser(ctx, actorID, user.UpdateUserRequest{ID: id, IsActive: &active})
	return err
}
