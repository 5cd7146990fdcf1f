package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pharma-portal/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubChecker struct {
	mu    sync.Mutex
	roles map[uuid.UUID]domain.Role
	calls int
}

func (s *stubChecker) HasRole(_ context.Context, userID uuid.UUID, role domain.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.roles[userID] == role
}

func (s *stubChecker) set(userID uuid.UUID, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = role
}

func serveAs(h http.Handler, userID *uuid.UUID, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != nil {
		req = req.WithContext(WithUserID(req.Context(), *userID))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRequireRole_AdminAllowed(t *testing.T) {
	admin := uuid.New()
	checker := &stubChecker{roles: map[uuid.UUID]domain.Role{admin: domain.RoleAdmin}}
	h := RequireAdmin(checker, zap.NewNop())(okHandler())

	w := serveAs(h, &admin, "/api/admin/orders")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_DeniedRedirectsToDashboardAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	user := uuid.New()
	checker := &stubChecker{roles: map[uuid.UUID]domain.Role{user: domain.RoleUser}}
	h := RequireRole(checker, domain.RolePharmacist, zap.New(core))(okHandler())

	w := serveAs(h, &user, "/api/products/restricted")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, DashboardPath, resp.Error.Details["redirect"])

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, user.String(), fields["user_id"])
	assert.Equal(t, "pharmacist", fields["role"])
	assert.Equal(t, "/api/products/restricted", fields["path"])
}

func TestRequireRole_NoSessionIsUnauthorized(t *testing.T) {
	checker := &stubChecker{roles: map[uuid.UUID]domain.Role{}}
	h := RequireAdmin(checker, zap.NewNop())(okHandler())

	w := serveAs(h, nil, "/api/admin/invoices")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, checker.calls)
}

func TestRequireRole_RecheckedOnEveryRequest(t *testing.T) {
	user := uuid.New()
	checker := &stubChecker{roles: map[uuid.UUID]domain.Role{user: domain.RoleAdmin}}
	h := RequireAdmin(checker, zap.NewNop())(okHandler())

	assert.Equal(t, http.StatusOK, serveAs(h, &user, "/api/admin/roles").Code)

	checker.set(user, domain.RoleUser)
	assert.Equal(t, http.StatusForbidden, serveAs(h, &user, "/api/admin/roles").Code)
	assert.Equal(t, 2, checker.calls)
}
