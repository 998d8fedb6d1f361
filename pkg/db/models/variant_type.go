package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// VariantType is one axis of variation (Size, Color) for a product.
type VariantType struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index:idx_variant_types_product"`
	Name       string            `gorm:"column:name;not null"`
	Slug       string            `gorm:"column:slug;not null"`
	Kind       enums.VariantKind `gorm:"column:kind;not null"`
	IsRequired bool              `gorm:"column:is_required;not null"`
	SortOrder  int               `gorm:"column:sort_order;not null"`
	Values     []VariantValue    `gorm:"foreignKey:VariantTypeID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (VariantType) TableName() string { return "product_variant_types" }

func (t *VariantType) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Kind == "" {
		t.Kind = enums.DefaultVariantKind
	}
	return nil
}
