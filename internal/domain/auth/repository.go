package auth

import "context"

// RefreshTokenRepository persists issued refresh tokens as hashes so they
// can be revoked before they expire.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID string, token string, expiresAt int64, session SessionInfo) error
	// IsRevoked reports true for revoked, expired or unknown tokens.
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}
