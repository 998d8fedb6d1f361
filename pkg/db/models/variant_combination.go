package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VariantSelection pins one variant type to the chosen value. Order within a
// combination follows the order the types were selected in.
type VariantSelection struct {
	VariantTypeID uuid.UUID `json:"variant_type_id"`
	Value         string    `json:"value"`
}

// VariantCombination is one sellable SKU of a product.
type VariantCombination struct {
	ID            uuid.UUID                             `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID                             `gorm:"column:product_id;type:uuid;not null;index:idx_variant_combinations_product"`
	VariantSKU    string                                `gorm:"column:variant_sku;not null;uniqueIndex:uq_variant_combinations_variant_sku"`
	VariantName   string                                `gorm:"column:variant_name;not null"`
	Price         decimal.NullDecimal                   `gorm:"column:price;type:numeric(12,4)"`
	CostPrice     decimal.NullDecimal                   `gorm:"column:cost_price;type:numeric(12,4)"`
	StockQuantity int                                   `gorm:"column:stock_quantity;not null"`
	ImageURL      *string                               `gorm:"column:image_url"`
	IsActive      bool                                  `gorm:"column:is_active;not null"`
	VariantData   datatypes.JSONSlice[VariantSelection] `gorm:"column:variant_data;not null"`
	CreatedAt     time.Time                             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                             `gorm:"column:updated_at;autoUpdateTime"`
}

func (VariantCombination) TableName() string { return "product_variant_combinations" }

func (c *VariantCombination) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Values returns the selected values in selection order.
func (c VariantCombination) Values() []string {
	out := make([]string, 0, len(c.VariantData))
	for _, sel := range c.VariantData {
		out = append(out, sel.Value)
	}
	return out
}
