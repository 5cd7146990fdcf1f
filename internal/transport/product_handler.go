package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pharma-portal/internal/catalog"
	"pharma-portal/internal/domain"
	"pharma-portal/internal/middleware"
	"pharma-portal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the admin create/update payload
type ProductRequest struct {
	Name                  string          `json:"name" validate:"required"`
	Description           string          `json:"description"`
	LongDescription       string          `json:"longDescription"`
	Price                 decimal.Decimal `json:"price"`
	ImageURL              string          `json:"image"`
	Category              string          `json:"category" validate:"required,oneof=flower extract oil capsule other"`
	Stock                 int             `json:"stock" validate:"gte=0"`
	THCContent            *string         `json:"thcContent"`
	CBDContent            *string         `json:"cbdContent"`
	Terpenes              []string        `json:"terpenes"`
	Weight                *string         `json:"weight"`
	Dosage                *string         `json:"dosage"`
	Manufacturer          *string         `json:"manufacturer"`
	CountryOfOrigin       *string         `json:"countryOfOrigin"`
	PharmacyProductNumber *string         `json:"pharmacyProductNumber"`
}

func (req ProductRequest) toDomain() *domain.Product {
	return &domain.Product{
		Name:                  req.Name,
		Description:           req.Description,
		LongDescription:       req.LongDescription,
		Price:                 req.Price,
		ImageURL:              req.ImageURL,
		Category:              domain.ProductCategory(req.Category),
		Stock:                 req.Stock,
		THCContent:            req.THCContent,
		CBDContent:            req.CBDContent,
		Terpenes:              domain.StringList(req.Terpenes),
		Weight:                req.Weight,
		Dosage:                req.Dosage,
		Manufacturer:          req.Manufacturer,
		CountryOfOrigin:       req.CountryOfOrigin,
		PharmacyProductNumber: req.PharmacyProductNumber,
	}
}

// ProductHandler serves the public catalog and the admin product console
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

// RegisterRoutes registers the catalog and the admin product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})

	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Patch)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns the catalog narrowed by the query parameters search,
// category, minPrice, maxPrice, thc and cbd
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.productService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product := req.toDomain()
	if err := h.productService.Create(r.Context(), product); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product := req.toDomain()
	product.ID = id
	if err := h.productService.Update(r.Context(), product); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Patch accepts any subset of the product's camelCase fields
func (h *ProductHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || len(fields) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Patch(r.Context(), id, fields)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// parseFilter reads the catalog filter from the query string. A single
// price bound is completed from DefaultPriceRange.
func parseFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	f := catalog.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		THC:      domain.PotencyTier(strings.ToLower(q.Get("thc"))),
		CBD:      domain.PotencyTier(strings.ToLower(q.Get("cbd"))),
	}

	if f.THC != "" && !f.THC.IsValid() {
		return f, errors.New("invalid thc tier")
	}
	if f.CBD != "" && !f.CBD.IsValid() {
		return f, errors.New("invalid cbd tier")
	}

	minPrice, maxPrice := q.Get("minPrice"), q.Get("maxPrice")
	if minPrice != "" || maxPrice != "" {
		price := catalog.DefaultPriceRange
		if minPrice != "" {
			v, err := decimal.NewFromString(minPrice)
			if err != nil {
				return f, errors.New("invalid minPrice")
			}
			price.Min = v
		}
		if maxPrice != "" {
			v, err := decimal.NewFromString(maxPrice)
			if err != nil {
				return f, errors.New("invalid maxPrice")
			}
			price.Max = v
		}
		f.Price = &price
	}

	return f, nil
}
