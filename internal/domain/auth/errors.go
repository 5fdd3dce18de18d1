package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrOAuthAccountUnknown = errors.New("no portal account is linked to this Google account")
	ErrOAuthStateMismatch  = errors.New("oauth state mismatch")
)
