package service

import (
	"context"
	"time"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService manages invoices. Status changes are not guarded: any
// status may follow any other.
type InvoiceService interface {
	List(ctx context.Context) ([]*domain.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	Create(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, invoice *domain.Invoice) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	taxRate     decimal.Decimal
	now         func() time.Time
}

// NewInvoiceService creates a new instance of InvoiceService
func NewInvoiceService(invoiceRepo repository.InvoiceRepository, taxRate decimal.Decimal) InvoiceService {
	return &invoiceService{invoiceRepo: invoiceRepo, taxRate: taxRate, now: time.Now}
}

func (s *invoiceService) List(ctx context.Context) ([]*domain.Invoice, error) {
	return s.invoiceRepo.List(ctx)
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// Create assigns an id, defaults to draft and computes the totals
func (s *invoiceService) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.Status == "" {
		inv.Status = domain.InvoiceStatusDraft
	}
	if !inv.Status.IsValid() {
		return ErrInvalidStatus
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = s.now()
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.IssueDate.AddDate(0, 0, 14)
	}

	inv.ID = uuid.New()
	inv.PaidDate = nil
	s.stampPaid(inv)
	inv.Recalculate(s.taxRate)
	return s.invoiceRepo.Create(ctx, inv)
}

// Update replaces the editable fields of an invoice. An empty status or
// date keeps the stored one; the paid date is only ever set here.
func (s *invoiceService) Update(ctx context.Context, inv *domain.Invoice) error {
	existing, err := s.invoiceRepo.FindByID(ctx, inv.ID)
	if err != nil {
		return err
	}

	if inv.Status == "" {
		inv.Status = existing.Status
	}
	if !inv.Status.IsValid() {
		return ErrInvalidStatus
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = existing.IssueDate
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = existing.DueDate
	}
	inv.PaidDate = existing.PaidDate
	s.stampPaid(inv)

	inv.Recalculate(s.taxRate)
	return s.invoiceRepo.Update(ctx, inv)
}

// SetStatus stamps the paid date when an invoice becomes paid
func (s *invoiceService) SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	inv.Status = status
	s.stampPaid(inv)

	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// stampPaid records the first time an invoice is paid
func (s *invoiceService) stampPaid(inv *domain.Invoice) {
	if inv.Status == domain.InvoiceStatusPaid && inv.PaidDate == nil {
		paid := s.now()
		inv.PaidDate = &paid
	}
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.invoiceRepo.Delete(ctx, id)
}
