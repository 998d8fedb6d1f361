package pricing

import (
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TierDTO is the API shape of a pricing tier.
type TierDTO struct {
	ID                   uuid.UUID        `json:"id"`
	ProductID            uuid.UUID        `json:"product_id"`
	VariantCombinationID *uuid.UUID       `json:"variant_combination_id"`
	UnitType             enums.UnitType   `json:"unit_type"`
	UnitLabel            string           `json:"unit_label"`
	MinQuantity          decimal.Decimal  `json:"min_quantity"`
	MaxQuantity          *decimal.Decimal `json:"max_quantity"`
	Price                decimal.Decimal  `json:"price"`
	CostPrice            *decimal.Decimal `json:"cost_price"`
	DiscountPercent      *decimal.Decimal `json:"discount_percent"`
	IsActive             bool             `json:"is_active"`
	SortOrder            int              `json:"sort_order"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// SummaryDTO is the pricing overview shown next to a tier list.
type SummaryDTO struct {
	BasePrice decimal.Decimal `json:"base_price"`
	MinPrice  decimal.Decimal `json:"min_price"`
	MaxPrice  decimal.Decimal `json:"max_price"`
	TierCount int             `json:"tier_count"`
	HasTiers  bool            `json:"has_tiers"`
}

// ProductTiersDTO pairs a product's tiers with their summary.
type ProductTiersDTO struct {
	ProductID uuid.UUID   `json:"product_id"`
	Tiers     []TierDTO   `json:"tiers"`
	Summary   *SummaryDTO `json:"summary"`
}

const (
	PriceSourceTier      = "tier"
	PriceSourceBasePrice = "base_price"
)

// PriceQuoteDTO is the answer to "what does quantity N cost".
type PriceQuoteDTO struct {
	ProductID                 uuid.UUID        `json:"product_id"`
	VariantCombinationID      *uuid.UUID       `json:"variant_combination_id"`
	Quantity                  decimal.Decimal  `json:"quantity"`
	Price                     decimal.Decimal  `json:"price"`
	Total                     decimal.Decimal  `json:"total"`
	BasePrice                 decimal.Decimal  `json:"base_price"`
	Source                    string           `json:"source"`
	Tier                      *TierDTO         `json:"tier"`
	DiscountPercent           *decimal.Decimal `json:"discount_percent"`
	DiscountAmount            *decimal.Decimal `json:"discount_amount,omitempty"`
	CalculatedDiscountPercent *decimal.Decimal `json:"calculated_discount_percent,omitempty"`
}

// UnitDTO is one row of the unit table.
type UnitDTO struct {
	Value enums.UnitType `json:"value"`
	Label string         `json:"label"`
}

// TierUpdateInput carries the fields of a partial tier update. Nullable fields
// distinguish an explicit null (clear) from an omitted field.
type TierUpdateInput struct {
	VariantCombinationID types.NullableUUID
	UnitType             *string
	MinQuantity          *decimal.Decimal
	MaxQuantity          types.NullableDecimal
	Price                *decimal.Decimal
	CostPrice            types.NullableDecimal
	DiscountPercent      types.NullableDecimal
	IsActive             *bool
	SortOrder            *int
}

// NewTierDTO maps a tier model to its API shape.
func NewTierDTO(t *models.PricingTier) *TierDTO {
	if t == nil {
		return nil
	}
	return &TierDTO{
		ID:                   t.ID,
		ProductID:            t.ProductID,
		VariantCombinationID: t.VariantCombinationID,
		UnitType:             t.UnitType,
		UnitLabel:            t.UnitType.Label(),
		MinQuantity:          t.MinQuantity,
		MaxQuantity:          nullDecimalPtr(t.MaxQuantity),
		Price:                t.Price,
		CostPrice:            nullDecimalPtr(t.CostPrice),
		DiscountPercent:      nullDecimalPtr(t.DiscountPercent),
		IsActive:             t.IsActive,
		SortOrder:            t.SortOrder,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// NewTierDTOs maps a slice of tier models, never returning nil.
func NewTierDTOs(rows []models.PricingTier) []TierDTO {
	out := make([]TierDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewTierDTO(&rows[i]))
	}
	return out
}

// NewSummaryDTO maps a summary; nil stays nil.
func NewSummaryDTO(s *Summary) *SummaryDTO {
	if s == nil {
		return nil
	}
	return &SummaryDTO{
		BasePrice: s.BasePrice,
		MinPrice:  s.MinPrice,
		MaxPrice:  s.MaxPrice,
		TierCount: s.TierCount,
		HasTiers:  s.TierCount > 0,
	}
}

// NewPriceQuoteDTO maps a quote.
func NewPriceQuoteDTO(productID uuid.UUID, variantID *uuid.UUID, q Quote) *PriceQuoteDTO {
	dto := &PriceQuoteDTO{
		ProductID:                 productID,
		VariantCombinationID:      variantID,
		Quantity:                  q.Quantity,
		Price:                     q.UnitPrice,
		Total:                     q.Total,
		BasePrice:                 q.BasePrice,
		Source:                    PriceSourceBasePrice,
		DiscountAmount:            q.DiscountAmount,
		CalculatedDiscountPercent: q.CalculatedDiscountPercent,
	}
	if q.FromTier() {
		dto.Source = PriceSourceTier
		dto.Tier = NewTierDTO(q.Tier)
		dto.DiscountPercent = nullDecimalPtr(q.Tier.DiscountPercent)
	}
	return dto
}

func nullDecimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}

func decimalPtrToNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
