package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestProperty_ProtectedPathsRedirectToLogin(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing token answers 401 with login redirect and origin", prop.ForAll(
		func(segment string, method string) bool {
			path := "/admin/" + segment
			handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())

			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				return false
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				return false
			}
			return resp.Error.Details["redirect"] == LoginPath && resp.Error.Details["from"] == path
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_ValidTokenSetsUserID(t *testing.T) {
	userID := uuid.New()
	var seen uuid.UUID

	handler := AuthMiddleware(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	}))

	token := signed(t, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, seen)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	userID := uuid.New().String()
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", signed(t, jwt.MapClaims{"user_id": userID, "exp": future}, testSecret)},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"garbage", "Bearer not-a-token"},
		{"expired", "Bearer " + signed(t, jwt.MapClaims{"user_id": userID, "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)},
		{"foreign secret", "Bearer " + signed(t, jwt.MapClaims{"user_id": userID, "exp": future}, "other-secret")},
		{"missing user id", "Bearer " + signed(t, jwt.MapClaims{"exp": future}, testSecret)},
		{"user id not a uuid", "Bearer " + signed(t, jwt.MapClaims{"user_id": "42", "exp": future}, testSecret)},
		{"reset token", "Bearer " + signed(t, jwt.MapClaims{"user_id": userID, "purpose": "password_reset", "exp": future}, testSecret)},
	}

	handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, LoginPath, resp.Error.Details["redirect"])
			assert.Equal(t, "/api/cart", resp.Error.Details["from"])
		})
	}
}
