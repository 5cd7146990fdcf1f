package middleware

import (
	"context"
	"net/http"

	"pharma-portal/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DashboardPath is where authenticated clients without the role are sent
const DashboardPath = "/dashboard"

// RoleChecker answers whether a user holds a role. A lookup failure must
// answer false.
type RoleChecker interface {
	HasRole(ctx context.Context, userID uuid.UUID, role domain.Role) bool
}

// RequireRole lets the request through only when the authenticated user
// holds role. The check runs on every request; nothing is remembered
// between requests.
func RequireRole(checker RoleChecker, role domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				unauthorized(w, r, "authentication required")
				return
			}

			if !checker.HasRole(r.Context(), userID, role) {
				logger.Warn("Access denied",
					zap.String("user_id", userID.String()),
					zap.String("role", string(role)),
					zap.String("path", r.URL.Path),
				)
				RespondWithRedirect(w, http.StatusForbidden, "insufficient permissions", DashboardPath, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole for the admin role
func RequireAdmin(checker RoleChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(checker, domain.RoleAdmin, logger)
}
