package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pharma-portal/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceNumberInUse = errors.New("invoice number already in use")
)

// InvoiceRepository defines the interface for invoice data access.
// There is no invoices table; the only implementation keeps them in memory.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context) ([]*domain.Invoice, error)
}

type memoryInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]*domain.Invoice
}

// NewInvoiceRepository creates an in-memory InvoiceRepository holding seed
func NewInvoiceRepository(seed []*domain.Invoice) InvoiceRepository {
	r := &memoryInvoiceRepository{invoices: make(map[uuid.UUID]*domain.Invoice, len(seed))}
	for _, inv := range seed {
		r.invoices[inv.ID] = cloneInvoice(inv)
	}
	return r
}

func (r *memoryInvoiceRepository) Create(_ context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return ErrInvoiceNumberInUse
		}
	}
	r.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *memoryInvoiceRepository) Update(_ context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invoices[inv.ID]; !ok {
		return ErrInvoiceNotFound
	}
	for id, existing := range r.invoices {
		if id != inv.ID && existing.InvoiceNumber == inv.InvoiceNumber {
			return ErrInvoiceNumberInUse
		}
	}
	r.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *memoryInvoiceRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invoices[id]; !ok {
		return ErrInvoiceNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r *memoryInvoiceRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	return cloneInvoice(inv), nil
}

// List returns invoices by issue date, newest first
func (r *memoryInvoiceRepository) List(_ context.Context) ([]*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, cloneInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssueDate.Equal(out[j].IssueDate) {
			return out[i].InvoiceNumber > out[j].InvoiceNumber
		}
		return out[i].IssueDate.After(out[j].IssueDate)
	})
	return out, nil
}

func cloneInvoice(inv *domain.Invoice) *domain.Invoice {
	c := *inv
	c.Items = append([]domain.InvoiceLine(nil), inv.Items...)
	if inv.PaidDate != nil {
		t := *inv.PaidDate
		c.PaidDate = &t
	}
	if inv.Notes != nil {
		n := *inv.Notes
		c.Notes = &n
	}
	return &c
}

// MockInvoices returns the demo invoices the admin console starts with
func MockInvoices(now time.Time, taxRate decimal.Decimal) []*domain.Invoice {
	day := 24 * time.Hour
	paid := now.Add(-20 * day)
	note := "Bezahlt per Überweisung"

	invoices := []*domain.Invoice{
		{
			ID:            uuid.MustParse("3f1c2a6e-8d4b-4c1e-9a77-1b2c3d4e5f01"),
			InvoiceNumber: "INV-2024-001",
			OrderID:       uuid.MustParse("7a9e1d20-3b5c-4f6a-8e11-2c3d4e5f6a01"),
			CustomerName:  "Apotheke am Markt",
			CustomerAddress: domain.Address{
				Name:       "Apotheke am Markt",
				Street:     "Marktplatz 1",
				City:       "Berlin",
				PostalCode: "10115",
				Country:    "Deutschland",
			},
			Items: []domain.InvoiceLine{
				{Description: "Blüten Sorte A, 10g", Quantity: 5, UnitPrice: decimal.RequireFromString("89.90")},
				{Description: "CBD Öl 10%", Quantity: 2, UnitPrice: decimal.RequireFromString("45.00")},
			},
			Status:    domain.InvoiceStatusPaid,
			IssueDate: now.Add(-30 * day),
			DueDate:   now.Add(-16 * day),
			PaidDate:  &paid,
			Notes:     &note,
		},
		{
			ID:            uuid.MustParse("3f1c2a6e-8d4b-4c1e-9a77-1b2c3d4e5f02"),
			InvoiceNumber: "INV-2024-002",
			OrderID:       uuid.MustParse("7a9e1d20-3b5c-4f6a-8e11-2c3d4e5f6a02"),
			CustomerName:  "Stadt-Apotheke Hamburg",
			CustomerAddress: domain.Address{
				Name:       "Stadt-Apotheke Hamburg",
				Street:     "Mönckebergstraße 7",
				City:       "Hamburg",
				PostalCode: "20095",
				Country:    "Deutschland",
			},
			Items: []domain.InvoiceLine{
				{Description: "Vollspektrum Extrakt", Quantity: 3, UnitPrice: decimal.RequireFromString("120.00")},
			},
			Status:    domain.InvoiceStatusSent,
			IssueDate: now.Add(-7 * day),
			DueDate:   now.Add(7 * day),
		},
		{
			ID:            uuid.MustParse("3f1c2a6e-8d4b-4c1e-9a77-1b2c3d4e5f03"),
			InvoiceNumber: "INV-2024-003",
			OrderID:       uuid.MustParse("7a9e1d20-3b5c-4f6a-8e11-2c3d4e5f6a03"),
			CustomerName:  "Löwen-Apotheke München",
			CustomerAddress: domain.Address{
				Name:       "Löwen-Apotheke München",
				Street:     "Kaufingerstraße 12",
				City:       "München",
				PostalCode: "80331",
				Country:    "Deutschland",
			},
			Items: []domain.InvoiceLine{
				{Description: "Kapseln 25mg CBD", Quantity: 10, UnitPrice: decimal.RequireFromString("29.50")},
			},
			Status:    domain.InvoiceStatusOverdue,
			IssueDate: now.Add(-45 * day),
			DueDate:   now.Add(-15 * day),
		},
		{
			ID:            uuid.MustParse("3f1c2a6e-8d4b-4c1e-9a77-1b2c3d4e5f04"),
			InvoiceNumber: "INV-2024-004",
			OrderID:       uuid.MustParse("7a9e1d20-3b5c-4f6a-8e11-2c3d4e5f6a04"),
			CustomerName:  "Rosen-Apotheke Köln",
			CustomerAddress: domain.Address{
				Name:       "Rosen-Apotheke Köln",
				Street:     "Hohe Straße 40",
				City:       "Köln",
				PostalCode: "50667",
				Country:    "Deutschland",
			},
			Items: []domain.InvoiceLine{
				{Description: "Blüten Sorte B, 5g", Quantity: 4, UnitPrice: decimal.RequireFromString("54.00")},
			},
			Status:    domain.InvoiceStatusDraft,
			IssueDate: now.Add(-1 * day),
			DueDate:   now.Add(13 * day),
		},
	}

	for _, inv := range invoices {
		inv.Recalculate(taxRate)
	}
	return invoices
}
