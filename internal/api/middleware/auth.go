package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Morty67/kollectiv-api/internal/api/shared"
	"github.com/Morty67/kollectiv-api/internal/service/auth"
)

// ActivityRecorder records that a user made an authenticated request.
// Implemented by service.UserService.
type ActivityRecorder interface {
	TouchLastRequest(ctx context.Context, userID int64) error
}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	activity   ActivityRecorder
}

// NewAuthMiddleware creates a new AuthMiddleware with the given
// dependencies. activity may be nil to skip last-request tracking.
func NewAuthMiddleware(jwtService auth.JWTService, activity ActivityRecorder) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		activity:   activity,
	}
}

// Authenticate validates JWT tokens from the Authorization header,
// adds the user ID to the request context and records the user's
// last-request timestamp.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch err {
			case auth.ErrExpiredToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case auth.ErrInvalidToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", err)
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		if m.activity != nil {
			// Activity tracking must not fail the request.
			if err := m.activity.TouchLastRequest(r.Context(), claims.UserID); err != nil {
				slog.Warn("failed to record last request",
					slog.Int64("user_id", claims.UserID),
					slog.String("error", err.Error()))
			}
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
