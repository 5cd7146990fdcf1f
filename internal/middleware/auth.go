package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// LoginPath is where unauthenticated clients are sent
const LoginPath = "/login"

// AuthMiddleware validates access tokens and puts the user id into the
// request context. Rejections carry the login redirect and the requested
// path so the client can return after signing in.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				unauthorized(w, r, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				unauthorized(w, r, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					unauthorized(w, r, "token expired")
				} else {
					unauthorized(w, r, "invalid token")
				}
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				unauthorized(w, r, "invalid token")
				return
			}

			// reset tokens carry a purpose and are not sessions
			if purpose, _ := claims["purpose"].(string); purpose != "" {
				logger.Debug("Purpose token used as session", zap.String("purpose", purpose))
				unauthorized(w, r, "invalid token")
				return
			}

			raw, _ := claims["user_id"].(string)
			userID, err := uuid.Parse(raw)
			if err != nil {
				logger.Error("Missing user_id in token claims")
				unauthorized(w, r, "invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			logger.Debug("User authenticated", zap.String("user_id", userID.String()))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user id from the request context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// WithUserID returns a context carrying userID as the authenticated user
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	RespondWithRedirect(w, http.StatusUnauthorized, message, LoginPath, r.URL.Path)
}
