package repository

import (
	"context"
	"testing"
	"time"

	"pharma-portal/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockInvoices_TotalsUseTaxRate(t *testing.T) {
	invoices := MockInvoices(time.Now(), domain.TaxRate)
	require.NotEmpty(t, invoices)

	for _, inv := range invoices {
		sum := decimal.Zero
		for _, line := range inv.Items {
			assert.True(t, line.Total.Equal(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))))
			sum = sum.Add(line.Total)
		}
		assert.True(t, inv.Subtotal.Equal(sum), inv.InvoiceNumber)
		assert.True(t, inv.Tax.Equal(sum.Mul(domain.TaxRate).Round(2)), inv.InvoiceNumber)
		assert.True(t, inv.Total.Equal(inv.Subtotal.Add(inv.Tax)), inv.InvoiceNumber)
	}
}

func TestInvoiceRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := NewInvoiceRepository(MockInvoices(now, domain.TaxRate))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].IssueDate.After(list[i-1].IssueDate), "expected newest first")
	}

	inv := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-2024-099",
		OrderID:       uuid.New(),
		CustomerName:  "Neue Apotheke",
		Items:         []domain.InvoiceLine{{Description: "Öl", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		Status:        domain.InvoiceStatusDraft,
		IssueDate:     now,
		DueDate:       now.Add(14 * 24 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, inv))

	dup := *inv
	dup.ID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrInvoiceNumberInUse)

	// stored copies are independent of the caller's value
	inv.Items[0].Description = "mutated"
	got, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Öl", got.Items[0].Description)

	got.Status = domain.InvoiceStatusPaid
	require.NoError(t, repo.Update(ctx, got))
	got.Status = domain.InvoiceStatusDraft
	require.NoError(t, repo.Update(ctx, got), "any status may follow any other")

	require.NoError(t, repo.Delete(ctx, inv.ID))
	_, err = repo.FindByID(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, inv.ID), ErrInvoiceNotFound)
	assert.ErrorIs(t, repo.Update(ctx, inv), ErrInvoiceNotFound)
}
