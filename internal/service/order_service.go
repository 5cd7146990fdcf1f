package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/mapping"
	"pharma-portal/internal/repository"
	"pharma-portal/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Checkout is what the customer enters on the checkout page
type Checkout struct {
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	PaymentMethod   string
	Notes           *string
}

// OrderService defines the interface for order placement and administration.
// Status changes have no side effects and stock is never decremented.
type OrderService interface {
	Submit(ctx context.Context, userID uuid.UUID, checkout Checkout) (*domain.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
	CancelMine(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)

	ListAll(ctx context.Context) ([]*domain.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	Advance(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	SetTracking(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*domain.Order, error)
	SetNotes(ctx context.Context, orderID uuid.UUID, notes string) (*domain.Order, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	store       session.Store
	taxRate     decimal.Decimal
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	store session.Store,
	taxRate decimal.Decimal,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		store:       store,
		taxRate:     taxRate,
		logger:      logger,
	}
}

// Submit turns the session cart into one pending order and clears the
// cart. On failure the cart is left untouched.
func (s *orderService) Submit(ctx context.Context, userID uuid.UUID, checkout Checkout) (*domain.Order, error) {
	c, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	ids := make([]uuid.UUID, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	_, items := cartLines(c, products)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	totals := domain.ComputeTotals(items, s.taxRate)
	now := time.Now()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		TotalAmount:     totals.Total,
		Status:          domain.OrderStatusPending,
		ShippingAddress: checkout.ShippingAddress,
		BillingAddress:  checkout.BillingAddress,
		PaymentMethod:   checkout.PaymentMethod,
		Notes:           checkout.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.store.ClearCart(ctx, userID); err != nil {
		s.logger.Warn("Failed to clear cart after order", zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func (s *orderService) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// GetMine hides other customers' orders behind ErrOrderNotFound
func (s *orderService) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) CancelMine(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.GetMine(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, order)
}

func (s *orderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// Advance moves the order one step along StatusSequence. The update is
// issued even when the status is already at the end of the sequence.
func (s *orderService) Advance(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next := domain.NextStatus(order.Status)
	if err := s.orderRepo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}

	s.logger.Info("Order status advanced",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)),
	)
	order.Status = next
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, order)
}

func (s *orderService) cancel(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if !order.Status.CanCancel() {
		return nil, fmt.Errorf("%w: cannot cancel a %s order", ErrInvalidTransition, order.Status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled", zap.String("order_id", order.ID.String()), zap.String("from", string(order.Status)))
	order.Status = domain.OrderStatusCancelled
	return order, nil
}

// SetTracking stores the tracking number; an empty value clears it
func (s *orderService) SetTracking(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*domain.Order, error) {
	return s.patch(ctx, orderID, "trackingNumber", trackingNumber)
}

// SetNotes stores the staff notes; an empty value clears them
func (s *orderService) SetNotes(ctx context.Context, orderID uuid.UUID, notes string) (*domain.Order, error) {
	return s.patch(ctx, orderID, "notes", notes)
}

func (s *orderService) patch(ctx context.Context, orderID uuid.UUID, field, value string) (*domain.Order, error) {
	var stored interface{}
	if v := strings.TrimSpace(value); v != "" {
		stored = v
	}

	columns := mapping.Orders.ToRemote(map[string]interface{}{field: stored})
	if err := s.orderRepo.Patch(ctx, orderID, columns); err != nil {
		return nil, err
	}
	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *orderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}
	s.logger.Info("Order deleted", zap.String("order_id", orderID.String()))
	return nil
}
