package transport

import (
	"net/http"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/middleware"
	"pharma-portal/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// VerificationRequest is a pharmacy's application for the pharmacist role
type VerificationRequest struct {
	PharmacyName      string   `json:"pharmacyName" validate:"required"`
	LicenseID         string   `json:"licenseId" validate:"required"`
	BusinessDocuments []string `json:"businessDocuments" validate:"dive,required"`
	ContactName       string   `json:"contactName" validate:"required"`
	ContactEmail      string   `json:"contactEmail" validate:"required,email"`
	ContactPhone      *string  `json:"contactPhone"`
}

// RejectRequest carries the reason shown to the applicant
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// VerificationHandler serves pharmacy verification for applicants and admins
type VerificationHandler struct {
	verificationService service.VerificationService
	logger              *zap.Logger
}

// NewVerificationHandler creates a new VerificationHandler
func NewVerificationHandler(verificationService service.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService, logger: logger}
}

// RegisterRoutes registers the applicant and admin verification routes
func (h *VerificationHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/verifications", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Submit)
		r.Get("/me", h.Mine)
	})

	r.Route("/api/admin/verifications", func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Get("/", h.List)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
}

func (h *VerificationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req VerificationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	v, err := h.verificationService.Submit(r.Context(), userID, service.Application{
		PharmacyName:      req.PharmacyName,
		LicenseID:         req.LicenseID,
		BusinessDocuments: req.BusinessDocuments,
		ContactName:       req.ContactName,
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to submit verification")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, v)
}

func (h *VerificationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	v, err := h.verificationService.Mine(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to load verification")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, v)
}

// List optionally narrows by ?status=
func (h *VerificationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.VerificationStatus(r.URL.Query().Get("status"))

	list, err := h.verificationService.List(r.Context(), status)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list verifications")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, list)
}

// Approve grants the pharmacist role to the applicant
func (h *VerificationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.verificationService.Approve(r.Context(), reviewerID, id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to approve verification")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, v)
}

func (h *VerificationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	v, err := h.verificationService.Reject(r.Context(), reviewerID, id, req.Reason)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to reject verification")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, v)
}
