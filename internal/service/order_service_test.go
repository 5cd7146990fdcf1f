package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/repository"
	"pharma-portal/internal/session"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testAddress = domain.Address{
	Name:       "Apotheke am Markt",
	Street:     "Marktplatz 1",
	City:       "Berlin",
	PostalCode: "10115",
	Country:    "Deutschland",
}

type orderFixture struct {
	service  OrderService
	orders   *mockOrderRepository
	products *mockProductRepository
	store    session.Store
}

func newOrderFixture(t *testing.T, products ...*domain.Product) *orderFixture {
	f := &orderFixture{
		orders:   newMockOrderRepository(),
		products: newMockProductRepository(products...),
		store:    newTestStore(t),
	}
	f.service = NewOrderService(f.orders, f.products, f.store, domain.TaxRate, zap.NewNop())
	return f
}

func testProduct(price string, stock int) *domain.Product {
	return &domain.Product{
		ID:        uuid.New(),
		Name:      "Produkt",
		Price:     decimal.RequireFromString(price),
		Category:  domain.CategoryFlower,
		Stock:     stock,
		CreatedAt: time.Now(),
	}
}

func checkout() Checkout {
	return Checkout{ShippingAddress: testAddress, BillingAddress: testAddress, PaymentMethod: "invoice"}
}

func TestSubmit_ComputesTotalsAndClearsCart(t *testing.T) {
	ctx := context.Background()
	p1 := testProduct("100", 5)
	f := newOrderFixture(t, p1)
	user := uuid.New()

	c, err := f.store.LoadCart(ctx, user)
	require.NoError(t, err)
	c.Add(p1.ID, 2, p1.Stock)
	require.NoError(t, f.store.SaveCart(ctx, user, c))

	order, err := f.service.Submit(ctx, user, checkout())
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)), order.Subtotal.String())
	assert.True(t, order.Tax.Equal(decimal.NewFromInt(38)), order.Tax.String())
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(238)), order.TotalAmount.String())
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, p1.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)

	after, err := f.store.LoadCart(ctx, user)
	require.NoError(t, err)
	assert.True(t, after.IsEmpty(), "cart should be cleared after a successful order")

	assert.Equal(t, 5, p1.Stock, "stock is never decremented")
}

func TestSubmit_FailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	p1 := testProduct("10", 5)
	f := newOrderFixture(t, p1)
	f.orders.createErr = errBoom
	user := uuid.New()

	c, _ := f.store.LoadCart(ctx, user)
	c.Add(p1.ID, 1, p1.Stock)
	require.NoError(t, f.store.SaveCart(ctx, user, c))

	_, err := f.service.Submit(ctx, user, checkout())
	assert.ErrorIs(t, err, errBoom)

	after, _ := f.store.LoadCart(ctx, user)
	assert.Equal(t, 1, after.Quantity(p1.ID))
}

func TestSubmit_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	user := uuid.New()

	_, err := f.service.Submit(ctx, user, checkout())
	assert.ErrorIs(t, err, ErrEmptyCart)

	// a cart whose products have all been deleted counts as empty
	c, _ := f.store.LoadCart(ctx, user)
	c.Add(uuid.New(), 1, 3)
	require.NoError(t, f.store.SaveCart(ctx, user, c))

	_, err = f.service.Submit(ctx, user, checkout())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestProperty_SubmittedTotalsAddUp(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total equals subtotal plus rounded tax", prop.ForAll(
		func(priceCents int64, quantity int) bool {
			ctx := context.Background()
			p := testProduct("1", 100)
			p.Price = decimal.New(priceCents, -2)
			f := newOrderFixture(t, p)
			user := uuid.New()

			c, _ := f.store.LoadCart(ctx, user)
			c.Add(p.ID, quantity, p.Stock)
			if err := f.store.SaveCart(ctx, user, c); err != nil {
				return false
			}

			order, err := f.service.Submit(ctx, user, checkout())
			if err != nil {
				t.Logf("FAIL: submit failed: %v", err)
				return false
			}

			subtotal := p.Price.Mul(decimal.NewFromInt(int64(quantity)))
			tax := subtotal.Mul(decimal.RequireFromString("0.19")).Round(2)
			return order.Subtotal.Equal(subtotal) &&
				order.Tax.Equal(tax) &&
				order.TotalAmount.Equal(subtotal.Add(tax))
		},
		gen.Int64Range(1, 100000),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func placeOrder(f *orderFixture, user uuid.UUID, status domain.OrderStatus) *domain.Order {
	o := &domain.Order{ID: uuid.New(), UserID: user, Status: status}
	f.orders.orders[o.ID] = o
	return o
}

func TestAdvance_ShippedToDeliveredThenNoOp(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o := placeOrder(f, uuid.New(), domain.OrderStatusShipped)

	advanced, err := f.service.Advance(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, advanced.Status)

	again, err := f.service.Advance(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, again.Status)
	assert.Equal(t, 2, f.orders.statusWrites, "advance always issues the update")
}

func TestAdvance_WalksTheSequence(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o := placeOrder(f, uuid.New(), domain.OrderStatusPending)

	want := []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusDelivered,
	}
	for _, w := range want {
		got, err := f.service.Advance(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, w, got.Status)
	}

	cancelled := placeOrder(f, uuid.New(), domain.OrderStatusCancelled)
	got, err := f.service.Advance(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)

	_, err = f.service.Advance(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestCancel_OnlyFromNonTerminalStates(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	for _, s := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusProcessing, domain.OrderStatusShipped} {
		o := placeOrder(f, uuid.New(), s)
		got, err := f.service.Cancel(ctx, o.ID)
		require.NoError(t, err, s)
		assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	}

	for _, s := range []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
		o := placeOrder(f, uuid.New(), s)
		_, err := f.service.Cancel(ctx, o.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition, s)
		assert.Equal(t, s, f.orders.orders[o.ID].Status)
	}
}

func TestCustomerOrders_AreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	owner := uuid.New()
	stranger := uuid.New()
	o := placeOrder(f, owner, domain.OrderStatusPending)

	_, err := f.service.GetMine(ctx, stranger, o.ID)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)

	_, err = f.service.CancelMine(ctx, stranger, o.ID)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	assert.Equal(t, domain.OrderStatusPending, f.orders.orders[o.ID].Status)

	got, err := f.service.CancelMine(ctx, owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)

	mine, err := f.service.ListMine(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestTrackingAndNotes(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o := placeOrder(f, uuid.New(), domain.OrderStatusDelivered)

	got, err := f.service.SetTracking(ctx, o.ID, " DHL-42 ")
	require.NoError(t, err)
	require.NotNil(t, got.TrackingNumber)
	assert.Equal(t, "DHL-42", *got.TrackingNumber)
	assert.Equal(t, domain.OrderStatusDelivered, got.Status, "tracking does not touch status")

	got, err = f.service.SetNotes(ctx, o.ID, "Rückfrage beim Kunden")
	require.NoError(t, err)
	require.NotNil(t, got.Notes)

	got, err = f.service.SetTracking(ctx, o.ID, "")
	require.NoError(t, err)
	assert.Nil(t, got.TrackingNumber)

	require.NoError(t, f.service.Delete(ctx, o.ID))
	err = f.service.Delete(ctx, o.ID)
	assert.True(t, errors.Is(err, repository.ErrOrderNotFound))
}
