package transport

import (
	"net/http"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/mailer"
	"pharma-portal/internal/middleware"
	"pharma-portal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SendEmailRequest is the send-email function payload
type SendEmailRequest struct {
	Type         string `json:"type" validate:"required,oneof=signup password-reset contact"`
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"max=200"`
	PharmacyName string `json:"pharmacyName" validate:"max=200"`
	Message      string `json:"message" validate:"max=5000"`
	RedirectTo   string `json:"redirectTo" validate:"omitempty,url"`
}

// ManageRoleRequest is the manage-user-role function payload
type ManageRoleRequest struct {
	Action string      `json:"action" validate:"required,oneof=add remove"`
	UserID uuid.UUID   `json:"userId" validate:"required"`
	Role   domain.Role `json:"role" validate:"required,oneof=admin user pharmacist"`
}

// FunctionResult is the body of every function response
type FunctionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	EmailID string `json:"emailId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FunctionHandler serves the send-email and manage-user-role functions
type FunctionHandler struct {
	emailService service.EmailService
	roleService  service.RoleService
	logger       *zap.Logger
}

// NewFunctionHandler creates a new FunctionHandler
func NewFunctionHandler(emailService service.EmailService, roleService service.RoleService, logger *zap.Logger) *FunctionHandler {
	return &FunctionHandler{emailService: emailService, roleService: roleService, logger: logger}
}

// RegisterRoutes registers the function routes. send-email is public but
// rate limited; manage-user-role requires an admin.
func (h *FunctionHandler) RegisterRoutes(r chi.Router, rateLimit, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/functions", func(r chi.Router) {
		r.With(rateLimit).Post("/send-email", h.SendEmail)
		r.With(authMiddleware, adminMiddleware).Post("/manage-user-role", h.ManageUserRole)
	})
}

func (h *FunctionHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req SendEmailRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	result, err := h.emailService.Send(r.Context(), service.EmailRequest{
		Type:         mailer.Kind(req.Type),
		Email:        req.Email,
		Name:         req.Name,
		PharmacyName: req.PharmacyName,
		Message:      req.Message,
		RedirectTo:   req.RedirectTo,
	})
	if err != nil {
		h.functionError(w, err, "failed to send email")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, FunctionResult{
		Success: true,
		Message: result.Message,
		EmailID: result.EmailID,
	})
}

func (h *FunctionHandler) ManageUserRole(w http.ResponseWriter, r *http.Request) {
	var req ManageRoleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.roleService.Manage(r.Context(), req.Action, req.UserID, req.Role); err != nil {
		h.functionError(w, err, "failed to update role")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, FunctionResult{
		Success: true,
		Message: "role " + req.Action + " applied",
	})
}

// functionError answers {success:false, error}. Only known errors expose
// their message.
func (h *FunctionHandler) functionError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	message := err.Error()
	if status == 0 {
		h.logger.Error(fallback, zap.Error(err))
		status = http.StatusInternalServerError
		message = fallback
	}
	middleware.RespondWithJSON(w, status, FunctionResult{Success: false, Error: message})
}
