package user

import "context"

type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	UpdateUser(ctx context.Context, actorID string, req UpdateUserRequest) (UserResponse, error)
	GetUser(ctx context.Context, id string) (UserResponse, error)
	ListUsers(ctx context.Context, filter UserFilter) (ListUserResponse, error)
	// DeactivateUser also revokes every refresh token of the account.
	DeactivateUser(ctx context.Context, actorID, id string) error
}
