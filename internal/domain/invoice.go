package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the billing state of an invoice. Any status may be set
// from any other; there is no transition table.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid reports whether s is a known invoice status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// InvoiceLine is a billed position
type InvoiceLine struct {
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gte=1"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Invoice is a bill issued for an order
type Invoice struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	OrderID         uuid.UUID       `json:"orderId"`
	CustomerName    string          `json:"customerName"`
	CustomerAddress Address         `json:"customerAddress"`
	Items           []InvoiceLine   `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	Status          InvoiceStatus   `json:"status"`
	IssueDate       time.Time       `json:"issueDate"`
	DueDate         time.Time       `json:"dueDate"`
	PaidDate        *time.Time      `json:"paidDate,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

// Recalculate fills the per-line totals and the invoice amounts
func (inv *Invoice) Recalculate(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for i := range inv.Items {
		line := &inv.Items[i]
		line.Total = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(line.Total)
	}
	inv.Subtotal = subtotal
	inv.Tax = subtotal.Mul(taxRate).Round(2)
	inv.Total = subtotal.Add(inv.Tax)
}
