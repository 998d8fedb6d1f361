package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// PricingTier prices a quantity range of a product, optionally for a single
// variant combination. A nil VariantCombinationID applies product-wide.
type PricingTier struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProductID            uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index:idx_pricing_tiers_product"`
	VariantCombinationID *uuid.UUID          `gorm:"column:variant_combination_id;type:uuid;index:idx_pricing_tiers_variant"`
	UnitType             enums.UnitType      `gorm:"column:unit_type;not null"`
	MinQuantity          decimal.Decimal     `gorm:"column:min_quantity;type:numeric(12,4);not null"`
	MaxQuantity          decimal.NullDecimal `gorm:"column:max_quantity;type:numeric(12,4)"`
	Price                decimal.Decimal     `gorm:"column:price;type:numeric(12,4);not null"`
	CostPrice            decimal.NullDecimal `gorm:"column:cost_price;type:numeric(12,4)"`
	DiscountPercent      decimal.NullDecimal `gorm:"column:discount_percent;type:numeric(5,2)"`
	IsActive             bool                `gorm:"column:is_active;not null"`
	SortOrder            int                 `gorm:"column:sort_order;not null"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (PricingTier) TableName() string { return "product_pricing_tiers" }

func (t *PricingTier) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.UnitType == "" {
		t.UnitType = enums.DefaultUnitType
	}
	return nil
}

// VariantScoped reports whether the tier is bound to a single combination.
func (t PricingTier) VariantScoped() bool {
	return t.VariantCombinationID != nil
}
