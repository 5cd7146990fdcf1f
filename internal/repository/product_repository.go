package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/mapping"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownColumn   = errors.New("unknown column")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Patch(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, long_description, price, image_url, category, stock,
	thc_content, cbd_content, terpenes, weight, dosage, manufacturer, country_of_origin,
	pharmacy_product_number, created_at, updated_at`

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		p.ID,
		p.Name,
		p.Description,
		p.LongDescription,
		p.Price,
		p.ImageURL,
		p.Category,
		p.Stock,
		p.THCContent,
		p.CBDContent,
		p.Terpenes,
		p.Weight,
		p.Dosage,
		p.Manufacturer,
		p.CountryOfOrigin,
		p.PharmacyProductNumber,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites every editable column of a product and fills in its
// stored timestamps
func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, long_description = $4, price = $5, image_url = $6,
		    category = $7, stock = $8, thc_content = $9, cbd_content = $10, terpenes = $11,
		    weight = $12, dosage = $13, manufacturer = $14, country_of_origin = $15,
		    pharmacy_product_number = $16
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		p.ID,
		p.Name,
		p.Description,
		p.LongDescription,
		p.Price,
		p.ImageURL,
		p.Category,
		p.Stock,
		p.THCContent,
		p.CBDContent,
		p.Terpenes,
		p.Weight,
		p.Dosage,
		p.Manufacturer,
		p.CountryOfOrigin,
		p.PharmacyProductNumber,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Patch updates only the given snake_case columns. Columns must be declared
// in the product field dictionary.
func (r *productRepository) Patch(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error {
	result, err := patch(ctx, r.db, "products", mapping.Products, id, columns)
	if err != nil {
		return fmt.Errorf("failed to patch product: %w", err)
	}
	return expectAffected(result, ErrProductNotFound)
}

// Delete removes a product. Orders keep their own snapshot of it.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectAffected(result, ErrProductNotFound)
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDs loads several products at once; missing IDs are simply absent from the map
func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	out := make(map[uuid.UUID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out[p.ID] = p
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return out, nil
}

// List returns every product, most recently created first
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.LongDescription,
		&p.Price,
		&p.ImageURL,
		&p.Category,
		&p.Stock,
		&p.THCContent,
		&p.CBDContent,
		&p.Terpenes,
		&p.Weight,
		&p.Dosage,
		&p.Manufacturer,
		&p.CountryOfOrigin,
		&p.PharmacyProductNumber,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// patch builds "UPDATE table SET a = $2, b = $3 WHERE id = $1" from dictionary columns
func patch(ctx context.Context, db *sql.DB, table string, dict *mapping.Dictionary, id uuid.UUID, columns map[string]interface{}) (sql.Result, error) {
	if len(columns) == 0 {
		return nil, errors.New("nothing to update")
	}

	allowed := make(map[string]bool)
	for _, c := range dict.Columns() {
		allowed[c] = true
	}

	names := make([]string, 0, len(columns))
	for c := range columns {
		if !allowed[c] || c == "id" || c == "created_at" || c == "updated_at" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
		}
		names = append(names, c)
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]interface{}, 0, len(names)+1)
	args = append(args, id)
	for i, c := range names {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+2)
		args = append(args, columns[c])
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", table, strings.Join(sets, ", "))
	result, err := db.ExecContext(ctx, query, args...)
	if column, ok := notNullColumn(err); ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingValue, dict.Field(column))
	}
	return result, err
}
