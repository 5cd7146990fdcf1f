package transport

import (
	"context"
	"net/http"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/middleware"
	"pharma-portal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutRequest submits the session cart as an order
type CheckoutRequest struct {
	ShippingAddress domain.Address  `json:"shippingAddress" validate:"required"`
	BillingAddress  *domain.Address `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required,oneof=invoice prepayment card"`
	Notes           *string         `json:"notes" validate:"omitempty,max=2000"`
}

// TrackingRequest sets or clears the tracking number
type TrackingRequest struct {
	TrackingNumber string `json:"trackingNumber" validate:"max=100"`
}

// NotesRequest sets or clears the internal notes
type NotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// OrderHandler serves customer orders and the admin order console
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

// RegisterRoutes registers the customer and admin order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Submit)
		r.Get("/", h.ListMine)
		r.Get("/{id}", h.GetMine)
		r.Post("/{id}/cancel", h.CancelMine)
	})

	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Get("/", h.ListAll)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/advance", h.Advance)
		r.Post("/{id}/cancel", h.Cancel)
		r.Put("/{id}/tracking", h.SetTracking)
		r.Put("/{id}/notes", h.SetNotes)
		r.Delete("/{id}", h.Delete)
	})
}

// Submit places an order from the caller's cart. The billing address
// defaults to the shipping address.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		if err := middleware.ValidateRequest(req.BillingAddress); err != nil {
			middleware.RespondWithDecodeError(w, err)
			return
		}
		billing = *req.BillingAddress
	}

	order, err := h.orderService.Submit(r.Context(), userID, service.Checkout{
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to submit order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMine(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetMine(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) CancelMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CancelMine(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to cancel order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withOrder(w, r, "failed to get order", h.orderService.Get)
}

// Advance moves the order one step along the status sequence
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.withOrder(w, r, "failed to advance order", h.orderService.Advance)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.withOrder(w, r, "failed to cancel order", h.orderService.Cancel)
}

func (h *OrderHandler) SetTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req TrackingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.orderService.SetTracking(r.Context(), id, req.TrackingNumber)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to set tracking number")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req NotesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.orderService.SetNotes(r.Context(), id, req.Notes)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to set notes")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete order")
		return
	}

	h.logger.Info("Order deleted", zap.String("order_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) withOrder(
	w http.ResponseWriter,
	r *http.Request,
	failure string,
	op func(ctx context.Context, id uuid.UUID) (*domain.Order, error),
) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := op(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, failure)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
