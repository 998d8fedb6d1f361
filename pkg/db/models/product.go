package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// Product is the root every tier, variant type and combination hangs off.
type Product struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SKU         string              `gorm:"column:sku;not null;uniqueIndex:uq_products_sku"`
	Name        string              `gorm:"column:name;not null"`
	Description *string             `gorm:"column:description"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric(12,4);not null"`
	Status      enums.ProductStatus `gorm:"column:status;not null"`
	ImageURL    *string             `gorm:"column:image_url"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = enums.ProductStatusDraft
	}
	return nil
}
