package catalog

import (
	"reflect"
	"testing"

	"pharma-portal/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func product(name string, category domain.ProductCategory, price int64, thc, cbd *string) *domain.Product {
	return &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: name + " for medical use",
		Category:    category,
		Price:       decimal.NewFromInt(price),
		Stock:       10,
		THCContent:  thc,
		CBDContent:  cbd,
	}
}

func sampleCatalog() []*domain.Product {
	return []*domain.Product{
		product("Bedrocan", domain.CategoryFlower, 120, strPtr("22%"), strPtr("<1%")),
		product("Bediol", domain.CategoryFlower, 95, strPtr("6.5%"), strPtr("8%")),
		product("CBD Oil 10", domain.CategoryOil, 45, nil, strPtr("10%")),
		product("Dronabinol Capsules", domain.CategoryCapsule, 310, strPtr("2.5%"), nil),
		product("Full Spectrum Extract", domain.CategoryExtract, 180, strPtr("18%"), strPtr("2%")),
	}
}

func names(ps []*domain.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestApplyWithoutPredicatesKeepsOrder(t *testing.T) {
	products := sampleCatalog()
	assert.Equal(t, names(products), names(Apply(products, Filter{})))
}

func TestApplySearchIsCaseInsensitive(t *testing.T) {
	got := Apply(sampleCatalog(), Filter{Search: "OIL"})
	assert.Equal(t, []string{"CBD Oil 10"}, names(got))

	got = Apply(sampleCatalog(), Filter{Search: "medical"})
	assert.Len(t, got, 5)

	got = Apply(sampleCatalog(), Filter{Search: "capsule"})
	assert.Equal(t, []string{"Dronabinol Capsules"}, names(got))
}

func TestApplyCategory(t *testing.T) {
	got := Apply(sampleCatalog(), Filter{Category: "flower"})
	assert.Equal(t, []string{"Bedrocan", "Bediol"}, names(got))

	got = Apply(sampleCatalog(), Filter{Category: CategoryAll})
	assert.Len(t, got, 5)
}

func TestApplyPriceRangeIsInclusive(t *testing.T) {
	r := PriceRange{Min: decimal.NewFromInt(45), Max: decimal.NewFromInt(120)}
	got := Apply(sampleCatalog(), Filter{Price: &r})
	assert.Equal(t, []string{"Bedrocan", "Bediol", "CBD Oil 10"}, names(got))

	def := DefaultPriceRange
	got = Apply(sampleCatalog(), Filter{Price: &def})
	assert.NotContains(t, names(got), "Dronabinol Capsules")
}

func TestApplyTHCTiers(t *testing.T) {
	high := Apply(sampleCatalog(), Filter{THC: domain.TierHigh})
	assert.Equal(t, []string{"Bedrocan", "Full Spectrum Extract"}, names(high))

	none := Apply(sampleCatalog(), Filter{THC: domain.TierNone})
	assert.Equal(t, []string{"CBD Oil 10"}, names(none))

	low := Apply(sampleCatalog(), Filter{THC: domain.TierLow})
	assert.Equal(t, []string{"Dronabinol Capsules"}, names(low))
}

func TestApplyCBDTiers(t *testing.T) {
	high := Apply(sampleCatalog(), Filter{CBD: domain.TierHigh})
	assert.Equal(t, []string{"CBD Oil 10"}, names(high))

	medium := Apply(sampleCatalog(), Filter{CBD: domain.TierMedium})
	assert.Equal(t, []string{"Bediol"}, names(medium))

	// "<1%" has no numeric prefix and counts as zero
	none := Apply(sampleCatalog(), Filter{CBD: domain.TierNone})
	assert.Equal(t, []string{"Bedrocan", "Dronabinol Capsules"}, names(none))
}

func TestApplyMissingPotencyOnlyMatchesNone(t *testing.T) {
	p := product("Unlabelled", domain.CategoryOther, 10, nil, nil)
	assert.Empty(t, Apply([]*domain.Product{p}, Filter{THC: domain.TierHigh}))
	assert.Len(t, Apply([]*domain.Product{p}, Filter{THC: domain.TierNone}), 1)
}

func TestApplyComposesWithAnd(t *testing.T) {
	got := Apply(sampleCatalog(), Filter{Category: "flower", THC: domain.TierMedium})
	require.Len(t, got, 1)
	assert.Equal(t, "Bediol", got[0].Name)
}

func TestProperty_FilterIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("applying the same filter twice yields the same result", prop.ForAll(
		func(search string, category string, thc domain.PotencyTier, cbd domain.PotencyTier, maxPrice int64) bool {
			r := PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(maxPrice)}
			f := Filter{Search: search, Category: category, Price: &r, THC: thc, CBD: cbd}

			products := sampleCatalog()
			once := Apply(products, f)
			twice := Apply(products, f)
			if !reflect.DeepEqual(once, twice) {
				return false
			}
			// filtering the filtered list changes nothing either
			return reflect.DeepEqual(once, Apply(once, f))
		},
		gen.OneConstOf("", "b", "oil", "extract", "xyz"),
		gen.OneConstOf("", CategoryAll, "flower", "oil", "capsule"),
		gen.OneConstOf(domain.TierAll, domain.TierNone, domain.TierLow, domain.TierMedium, domain.TierHigh),
		gen.OneConstOf(domain.TierAll, domain.TierNone, domain.TierLow, domain.TierMedium, domain.TierHigh),
		gen.Int64Range(0, 400),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
