package transport

import (
	"errors"
	"net/http"

	"pharma-portal/internal/middleware"
	"pharma-portal/internal/repository"
	"pharma-portal/internal/service"
	"pharma-portal/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusFor maps a service or repository error to an HTTP status.
// Zero means the error is not a known one.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrInvoiceNotFound),
		errors.Is(err, repository.ErrRoleNotFound),
		errors.Is(err, repository.ErrVerificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrUserAlreadyExists),
		errors.Is(err, repository.ErrInvoiceNumberInUse),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrFieldRequired),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidStock),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrMessageRequired),
		errors.Is(err, service.ErrInvalidEmailType),
		errors.Is(err, repository.ErrUnknownColumn),
		errors.Is(err, repository.ErrMissingValue),
		errors.Is(err, session.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	default:
		return 0
	}
}

// respondWithServiceError answers known errors with their own message and
// everything else with a 500 carrying fallback
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	if status := statusFor(err); status != 0 {
		logger.Debug(fallback, zap.Error(err))
		middleware.RespondWithError(w, status, err.Error())
		return
	}
	logger.Error(fallback, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
}

// pathID parses a UUID URL parameter, answering 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user id set by AuthMiddleware
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
	}
	return userID, ok
}
