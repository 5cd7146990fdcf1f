// Package catalog filters the storefront product list in memory.
package catalog

import (
	"strings"

	"pharma-portal/internal/domain"

	"github.com/shopspring/decimal"
)

// CategoryAll disables the category predicate
const CategoryAll = "all"

// DefaultPriceRange is the slider range shown before the user narrows it
var DefaultPriceRange = PriceRange{
	Min: decimal.Zero,
	Max: decimal.NewFromInt(300),
}

// PriceRange is an inclusive price interval
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains reports whether price lies within the range, bounds included
func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}

// Filter is a set of independently toggleable predicates.
// Zero values disable a predicate.
type Filter struct {
	Search   string
	Category string
	Price    *PriceRange
	THC      domain.PotencyTier
	CBD      domain.PotencyTier
}

// Apply returns the products matching every enabled predicate, in input order
func Apply(products []*domain.Product, f Filter) []*domain.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if f.Category != "" && f.Category != CategoryAll && string(p.Category) != f.Category {
			continue
		}
		if f.Price != nil && !f.Price.Contains(p.Price) {
			continue
		}
		if !tierMatches(f.THC, domain.THCTier(domain.Potency(p.THCContent))) {
			continue
		}
		if !tierMatches(f.CBD, domain.CBDTier(domain.Potency(p.CBDContent))) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p *domain.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(string(p.Category)), needle)
}

func tierMatches(want, got domain.PotencyTier) bool {
	if want == "" || want == domain.TierAll {
		return true
	}
	return want == got
}
