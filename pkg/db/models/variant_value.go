package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantValue is a single option of a VariantType.
type VariantValue struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VariantTypeID uuid.UUID `gorm:"column:variant_type_id;type:uuid;not null;index:idx_variant_values_type"`
	Value         string    `gorm:"column:value;not null"`
	DisplayValue  string    `gorm:"column:display_value;not null"`
	ColorCode     *string   `gorm:"column:color_code"`
	SortOrder     int       `gorm:"column:sort_order;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (VariantValue) TableName() string { return "product_variant_values" }

func (v *VariantValue) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.DisplayValue == "" {
		v.DisplayValue = v.Value
	}
	return nil
}
