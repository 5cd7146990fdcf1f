package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Storefront clients read prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductCategory is the free-form category string shown in the catalog
type ProductCategory string

const (
	CategoryFlower  ProductCategory = "flower"
	CategoryExtract ProductCategory = "extract"
	CategoryOil     ProductCategory = "oil"
	CategoryCapsule ProductCategory = "capsule"
	CategoryOther   ProductCategory = "other"
)

// Categories lists the categories offered in the admin console
var Categories = []ProductCategory{
	CategoryFlower,
	CategoryExtract,
	CategoryOil,
	CategoryCapsule,
	CategoryOther,
}

// IsValid reports whether c is one of Categories
func (c ProductCategory) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a product in the catalog
type Product struct {
	ID                    uuid.UUID       `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	LongDescription       string          `json:"longDescription"`
	Price                 decimal.Decimal `json:"price"`
	ImageURL              string          `json:"image"`
	Category              ProductCategory `json:"category"`
	Stock                 int             `json:"stock"`
	THCContent            *string         `json:"thcContent,omitempty"`
	CBDContent            *string         `json:"cbdContent,omitempty"`
	Terpenes              StringList      `json:"terpenes,omitempty"`
	Weight                *string         `json:"weight,omitempty"`
	Dosage                *string         `json:"dosage,omitempty"`
	Manufacturer          *string         `json:"manufacturer,omitempty"`
	CountryOfOrigin       *string         `json:"countryOfOrigin,omitempty"`
	PharmacyProductNumber *string         `json:"pharmacyProductNumber,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}
