package pricing

import (
	"bytes"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resolve returns the tier that prices quantity among a product's tiers, or
// nil when the caller should fall back to the base product price.
//
// With a variant id, tiers scoped to that combination and product-wide tiers
// compete; without one only product-wide tiers are eligible. Winners are
// picked variant-scoped first, then by the highest min_quantity, then by
// sort_order and id so overlapping ranges resolve deterministically.
func Resolve(tiers []models.PricingTier, quantity decimal.Decimal, variantID *uuid.UUID) *models.PricingTier {
	var best *models.PricingTier
	for i := range tiers {
		tier := &tiers[i]
		if !eligible(tier, variantID) || !Covers(tier, quantity) {
			continue
		}
		if best == nil || outranks(tier, best) {
			best = tier
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// Covers reports whether quantity falls inside the tier's range. Both bounds
// are inclusive; a missing max_quantity is unbounded.
func Covers(tier *models.PricingTier, quantity decimal.Decimal) bool {
	if quantity.LessThan(tier.MinQuantity) {
		return false
	}
	if tier.MaxQuantity.Valid && quantity.GreaterThan(tier.MaxQuantity.Decimal) {
		return false
	}
	return true
}

func eligible(tier *models.PricingTier, variantID *uuid.UUID) bool {
	if !tier.IsActive {
		return false
	}
	if tier.VariantCombinationID == nil {
		return true
	}
	return variantID != nil && *tier.VariantCombinationID == *variantID
}

func outranks(a, b *models.PricingTier) bool {
	if a.VariantScoped() != b.VariantScoped() {
		return a.VariantScoped()
	}
	if cmp := a.MinQuantity.Cmp(b.MinQuantity); cmp != 0 {
		return cmp > 0
	}
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
