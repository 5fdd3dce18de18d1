package auth

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest, session SessionInfo) (TokenResponse, error)
	// LoginWithGoogle signs in an existing active account matched by email.
	LoginWithGoogle(ctx context.Context, email string, verified bool, session SessionInfo) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	IssueStreamToken(ctx context.Context, userID string) (StreamTokenResponse, error)
}
