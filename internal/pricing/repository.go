package pricing

import (
	"context"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists pricing tiers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListByProduct returns the product's tiers in display order.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, includeInactive bool) ([]models.PricingTier, error) {
	q := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.PricingTier
	err := q.Order("sort_order ASC").Order("min_quantity ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

// ListByVariant returns the tiers scoped to one combination in display order.
func (r *Repository) ListByVariant(ctx context.Context, variantID uuid.UUID, includeInactive bool) ([]models.PricingTier, error) {
	q := r.db.WithContext(ctx).Where("variant_combination_id = ?", variantID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.PricingTier
	err := q.Order("sort_order ASC").Order("min_quantity ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

// ListCandidates returns the active tiers that may price a request: the
// product-wide ones plus, when variantID is set, the ones scoped to it.
// Range matching and ranking happen in Resolve.
func (r *Repository) ListCandidates(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) ([]models.PricingTier, error) {
	q := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true)
	if variantID != nil {
		q = q.Where("(variant_combination_id IS NULL OR variant_combination_id = ?)", *variantID)
	} else {
		q = q.Where("variant_combination_id IS NULL")
	}
	var rows []models.PricingTier
	err := q.Find(&rows).Error
	return rows, err
}

// FindByID loads one tier.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PricingTier, error) {
	var tier models.PricingTier
	if err := r.db.WithContext(ctx).First(&tier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

// Create inserts a tier.
func (r *Repository) Create(ctx context.Context, tier *models.PricingTier) (*models.PricingTier, error) {
	if err := r.db.WithContext(ctx).Create(tier).Error; err != nil {
		return nil, err
	}
	return tier, nil
}

// CreateMany inserts tiers in one statement; ids are populated in place.
func (r *Repository) CreateMany(ctx context.Context, tiers []models.PricingTier) error {
	if len(tiers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tiers).Error
}

// Update saves every column of the tier.
func (r *Repository) Update(ctx context.Context, tier *models.PricingTier) (*models.PricingTier, error) {
	if err := r.db.WithContext(ctx).Save(tier).Error; err != nil {
		return nil, err
	}
	return tier, nil
}

// Delete removes a tier and reports how many rows went away.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PricingTier{})
	return res.RowsAffected, res.Error
}

// DeleteByProduct removes every tier of a product.
func (r *Repository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.PricingTier{})
	return res.RowsAffected, res.Error
}

// CountActive counts a product's active tiers.
func (r *Repository) CountActive(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PricingTier{}).
		Where("product_id = ? AND is_active = ?", productID, true).
		Count(&count).
		Error
	return count, err
}
