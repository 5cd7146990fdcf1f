package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pharma-portal/internal/catalog"
	"pharma-portal/internal/domain"
	"pharma-portal/internal/mapping"
	"pharma-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines the interface for catalog and product administration
type ProductService interface {
	List(ctx context.Context, filter catalog.Filter) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Patch(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// List loads the catalog newest first and applies the filter in memory
func (s *productService) List(ctx context.Context, filter catalog.Filter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return catalog.Apply(products, filter), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) Create(ctx context.Context, p *domain.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	now := time.Now()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Terpenes == nil {
		p.Terpenes = domain.StringList{}
	}

	return s.productRepo.Create(ctx, p)
}

func (s *productService) Update(ctx context.Context, p *domain.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.productRepo.Update(ctx, p)
}

// Patch applies camelCase fields to the product and returns the result
func (s *productService) Patch(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*domain.Product, error) {
	columns, err := productColumns(fields)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Patch(ctx, id, columns); err != nil {
		return nil, err
	}
	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

func validateProduct(p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	if !p.Category.IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

// nullableProductFields are the product fields whose columns accept NULL
var nullableProductFields = map[string]bool{
	"thcContent":            true,
	"cbdContent":            true,
	"weight":                true,
	"dosage":                true,
	"manufacturer":          true,
	"countryOfOrigin":       true,
	"pharmacyProductNumber": true,
}

// productColumns validates patch fields and converts them to column values
func productColumns(fields map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for field, value := range fields {
		if !mapping.Products.Known(field) {
			return nil, fmt.Errorf("%w: %s", repository.ErrUnknownColumn, field)
		}
		if value == nil && !nullableProductFields[field] {
			return nil, fmt.Errorf("%w: %s", ErrFieldRequired, field)
		}

		switch field {
		case "name":
			name, _ := value.(string)
			if strings.TrimSpace(name) == "" {
				return nil, ErrNameRequired
			}
		case "price":
			price, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(value)))
			if err != nil || !price.IsPositive() {
				return nil, ErrInvalidPrice
			}
			value = price
		case "stock":
			stock, ok := wholeNumber(value)
			if !ok || stock < 0 {
				return nil, ErrInvalidStock
			}
			value = stock
		case "category":
			category, _ := value.(string)
			if !domain.ProductCategory(category).IsValid() {
				return nil, ErrInvalidCategory
			}
		case "terpenes":
			raw, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("invalid terpenes: %w", err)
			}
			var list domain.StringList
			if err := json.Unmarshal(raw, &list); err != nil {
				return nil, fmt.Errorf("invalid terpenes: %w", err)
			}
			value = list
		}

		out[mapping.Products.Column(field)] = value
	}
	return out, nil
}

// wholeNumber accepts the numeric forms encoding/json produces
func wholeNumber(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case int:
		return n, true
	default:
		return 0, false
	}
}
