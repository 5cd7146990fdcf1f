package service

import (
	"context"
	"fmt"

	"pharma-portal/internal/cart"
	"pharma-portal/internal/domain"
	"pharma-portal/internal/repository"
	"pharma-portal/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a cart entry joined with the current product data
type CartLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the cart as the storefront renders it
type CartView struct {
	Items  []CartLine    `json:"items"`
	Count  int           `json:"count"`
	Totals domain.Totals `json:"totals"`
}

// CartService applies cart rules against the session store. Quantity
// changes outside [1, stock] are ignored rather than rejected.
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartView, error)
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	store       session.Store
	productRepo repository.ProductRepository
	taxRate     decimal.Decimal
}

// NewCartService creates a new instance of CartService
func NewCartService(store session.Store, productRepo repository.ProductRepository, taxRate decimal.Decimal) CartService {
	return &cartService{store: store, productRepo: productRepo, taxRate: taxRate}
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	c, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *cartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	return s.mutate(ctx, userID, productID, func(c *cart.Cart, stock int) bool {
		return c.Add(productID, quantity, stock)
	})
}

func (s *cartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	return s.mutate(ctx, userID, productID, func(c *cart.Cart, stock int) bool {
		return c.SetQuantity(productID, quantity, stock)
	})
}

func (s *cartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	c, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.Remove(productID) {
		if err := s.store.SaveCart(ctx, userID, c); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, c)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.store.ClearCart(ctx, userID)
}

// mutate loads the cart, applies change with the product's current stock
// and saves only when something changed
func (s *cartService) mutate(ctx context.Context, userID, productID uuid.UUID, change func(*cart.Cart, int) bool) (*CartView, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if change(c, product.Stock) {
		if err := s.store.SaveCart(ctx, userID, c); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, c)
}

// view joins the cart with product data. Lines whose product no longer
// exists are left out of the view but stay in the stored cart.
func (s *cartService) view(ctx context.Context, c *cart.Cart) (*CartView, error) {
	ids := make([]uuid.UUID, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	lines, items := cartLines(c, products)
	return &CartView{
		Items:  lines,
		Count:  c.Count(),
		Totals: domain.ComputeTotals(items, s.taxRate),
	}, nil
}

// cartLines snapshots the cart into display lines and order line items
func cartLines(c *cart.Cart, products map[uuid.UUID]*domain.Product) ([]CartLine, []domain.LineItem) {
	lines := make([]CartLine, 0, len(c.Items))
	items := make([]domain.LineItem, 0, len(c.Items))
	for _, it := range c.Items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		li := domain.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			Price:     p.Price,
		}
		items = append(items, li)
		lines = append(lines, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.ImageURL,
			Price:     p.Price,
			Stock:     p.Stock,
			Quantity:  it.Quantity,
			Subtotal:  li.Subtotal(),
		})
	}
	return lines, items
}
