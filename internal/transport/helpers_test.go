package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "transport-test-secret"

// fakeAuthorizer holds role assignments in memory
type fakeAuthorizer struct {
	mu    sync.Mutex
	roles map[uuid.UUID][]domain.Role
}

func newFakeAuthorizer() *fakeAuthorizer {
	return &fakeAuthorizer{roles: map[uuid.UUID][]domain.Role{}}
}

func (f *fakeAuthorizer) grant(userID uuid.UUID, role domain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userID] = append(f.roles[userID], role)
}

func (f *fakeAuthorizer) HasRole(_ context.Context, userID uuid.UUID, role domain.Role) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles[userID] {
		if r == role {
			return true
		}
	}
	return false
}

func (f *fakeAuthorizer) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	return f.HasRole(ctx, userID, domain.RoleAdmin)
}

func (f *fakeAuthorizer) IsPharmacist(ctx context.Context, userID uuid.UUID) bool {
	return f.HasRole(ctx, userID, domain.RolePharmacist)
}

func (f *fakeAuthorizer) Roles(_ context.Context, userID uuid.UUID) []domain.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Role{}, f.roles[userID]...)
}

// testRouter wires handlers with the real auth and role middleware
type testRouter struct {
	chi.Router
	authz *fakeAuthorizer
	auth  func(http.Handler) http.Handler
	admin func(http.Handler) http.Handler
}

func newTestRouter() *testRouter {
	authz := newFakeAuthorizer()
	return &testRouter{
		Router: chi.NewRouter(),
		authz:  authz,
		auth:   middleware.AuthMiddleware(testSecret, zap.NewNop()),
		admin:  middleware.RequireAdmin(authz, zap.NewNop()),
	}
}

func accessToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// do sends a JSON request, authenticated when userID is not nil
func do(t *testing.T, h http.Handler, method, path string, body interface{}, userID *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("Authorization", "Bearer "+accessToken(t, *userID))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorDetail {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func ptr[T any](v T) *T { return &v }
