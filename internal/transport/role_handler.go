package transport

import (
	"net/http"

	"pharma-portal/internal/middleware"
	"pharma-portal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAdminRequest names the user to promote
type CreateAdminRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// RoleHandler serves role assignment listings and admin creation
type RoleHandler struct {
	roleService service.RoleService
	logger      *zap.Logger
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService service.RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{roleService: roleService, logger: logger}
}

// RegisterRoutes registers the admin role routes
func (h *RoleHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Get("/api/admin/roles", h.List)
		r.Post("/api/admin/admins", h.CreateAdmin)
	})
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list roles")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, roles)
}

// CreateAdmin promotes a user. The database function re-checks the caller.
func (h *RoleHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	callerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateAdminRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.roleService.CreateAdmin(r.Context(), callerID, req.UserID); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create admin")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "admin created"})
}
