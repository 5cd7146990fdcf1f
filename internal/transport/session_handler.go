package transport

import (
	"net/http"

	"pharma-portal/internal/middleware"
	"pharma-portal/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PreferencesRequest replaces the stored client preferences
type PreferencesRequest struct {
	Language              string `json:"language" validate:"required"`
	DocCheckAuthenticated bool   `json:"docCheckAuthenticated"`
}

// SessionHandler exposes the language and DocCheck preferences
type SessionHandler struct {
	store  session.Store
	logger *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(store session.Store, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: logger}
}

// RegisterRoutes registers the preference routes
func (h *SessionHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/session/preferences", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Put("/", h.Put)
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	prefs, err := h.store.LoadPreferences(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to load preferences")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, prefs)
}

func (h *SessionHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req PreferencesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	prefs := &session.Preferences{Language: req.Language, DocCheckAuthenticated: req.DocCheckAuthenticated}
	if err := h.store.SavePreferences(r.Context(), userID, prefs); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to save preferences")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, prefs)
}
