package transport

import (
	"net/http"
	"time"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/middleware"
	"pharma-portal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceRequest is the create/update payload. Line totals and invoice
// amounts are always recomputed server-side.
type InvoiceRequest struct {
	InvoiceNumber   string               `json:"invoiceNumber" validate:"required"`
	OrderID         uuid.UUID            `json:"orderId"`
	CustomerName    string               `json:"customerName" validate:"required"`
	CustomerAddress domain.Address       `json:"customerAddress"`
	Items           []domain.InvoiceLine `json:"items" validate:"dive"`
	Status          domain.InvoiceStatus `json:"status"`
	IssueDate       time.Time            `json:"issueDate"`
	DueDate         time.Time            `json:"dueDate"`
	Notes           *string              `json:"notes"`
}

func (req InvoiceRequest) toDomain() *domain.Invoice {
	return &domain.Invoice{
		InvoiceNumber:   req.InvoiceNumber,
		OrderID:         req.OrderID,
		CustomerName:    req.CustomerName,
		CustomerAddress: req.CustomerAddress,
		Items:           req.Items,
		Status:          req.Status,
		IssueDate:       req.IssueDate,
		DueDate:         req.DueDate,
		Notes:           req.Notes,
	}
}

// InvoiceStatusRequest sets an invoice's status
type InvoiceStatusRequest struct {
	Status domain.InvoiceStatus `json:"status" validate:"required"`
}

// InvoiceHandler serves the admin invoice console
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *zap.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, logger: logger}
}

// RegisterRoutes registers the admin invoice routes
func (h *InvoiceHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin/invoices", func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Put("/{id}/status", h.SetStatus)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoiceService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list invoices")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get invoice")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	inv := req.toDomain()
	if err := h.invoiceService.Create(r.Context(), inv); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create invoice")
		return
	}

	h.logger.Info("Invoice created", zap.String("invoice_id", inv.ID.String()), zap.String("number", inv.InvoiceNumber))
	middleware.RespondWithJSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req InvoiceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	inv := req.toDomain()
	inv.ID = id
	if err := h.invoiceService.Update(r.Context(), inv); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update invoice")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, inv)
}

// SetStatus accepts any status regardless of the current one
func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req InvoiceStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	inv, err := h.invoiceService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to set invoice status")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete invoice")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
