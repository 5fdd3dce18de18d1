package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/auth"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired accepts only verified access tokens carrying a user id.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != "access" || !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if userID, _ := claims["user_id"].(string); userID == "" {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated user's id from the verified token.
func UserID(ctx context.Context) string {
	_, claims, _ := jwtauth.FromContext(ctx)
	userID, _ := claims["user_id"].(string)
	return userID
}

// IsAdmin reports whether the verified token carries the ADMIN role.
func IsAdmin(ctx context.Context) bool {
	_, claims, _ := jwtauth.FromContext(ctx)
	role, _ := claims["role"].(string)
	return user.Role(role) == user.RoleAdmin
}

// AdminOnly must run after AuthRequired.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
