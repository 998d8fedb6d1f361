package pricing

import (
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary condenses a product's active tiers relative to its base price.
type Summary struct {
	BasePrice decimal.Decimal
	MinPrice  decimal.Decimal
	MaxPrice  decimal.Decimal
	TierCount int
}

// Summarize aggregates the active tiers in the set. It returns nil when there
// are none. The base price is echoed as stored; tier prices may exceed it.
func Summarize(basePrice decimal.Decimal, tiers []models.PricingTier) *Summary {
	var summary *Summary
	for _, tier := range tiers {
		if !tier.IsActive {
			continue
		}
		if summary == nil {
			summary = &Summary{BasePrice: basePrice, MinPrice: tier.Price, MaxPrice: tier.Price}
		}
		summary.MinPrice = decimal.Min(summary.MinPrice, tier.Price)
		summary.MaxPrice = decimal.Max(summary.MaxPrice, tier.Price)
		summary.TierCount++
	}
	return summary
}

// DiscountPercent is the saving of tierPrice against basePrice as a percentage
// rounded to two places. A non-positive base price yields zero.
func DiscountPercent(basePrice, tierPrice decimal.Decimal) decimal.Decimal {
	if !basePrice.IsPositive() {
		return decimal.Zero
	}
	return basePrice.Sub(tierPrice).Div(basePrice).Mul(hundred).Round(2)
}

// Quote is the price of a quantity, either from a tier or the base price.
type Quote struct {
	Quantity                  decimal.Decimal
	UnitPrice                 decimal.Decimal
	Total                     decimal.Decimal
	BasePrice                 decimal.Decimal
	Tier                      *models.PricingTier
	DiscountAmount            *decimal.Decimal
	CalculatedDiscountPercent *decimal.Decimal
}

// FromTier reports whether a tier priced the quote.
func (q Quote) FromTier() bool {
	return q.Tier != nil
}

// QuoteFor prices quantity with tier, falling back to basePrice when tier is nil.
// Savings are only reported when the base price exceeds the tier price.
func QuoteFor(basePrice decimal.Decimal, tier *models.PricingTier, quantity decimal.Decimal) Quote {
	q := Quote{Quantity: quantity, BasePrice: basePrice, UnitPrice: basePrice, Tier: tier}
	if tier != nil {
		q.UnitPrice = tier.Price
		if basePrice.GreaterThan(tier.Price) {
			amount := basePrice.Sub(tier.Price)
			percent := DiscountPercent(basePrice, tier.Price)
			q.DiscountAmount = &amount
			q.CalculatedDiscountPercent = &percent
		}
	}
	q.Total = quantity.Mul(q.UnitPrice)
	return q
}
