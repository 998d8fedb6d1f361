package variants

import (
	"context"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists variant types, their values and combinations.
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

func orderedValues(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("created_at ASC").Order("id ASC")
}

// ListTypes returns the product's variant types with their values, both in
// sort order.
func (r *Repository) ListTypes(ctx context.Context, productID uuid.UUID) ([]models.VariantType, error) {
	var rows []models.VariantType
	err := r.db.WithContext(ctx).
		Preload("Values", orderedValues).
		Where("product_id = ?", productID).
		Order("sort_order ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindType loads one variant type with its values.
func (r *Repository) FindType(ctx context.Context, id uuid.UUID) (*models.VariantType, error) {
	var vt models.VariantType
	if err := r.db.WithContext(ctx).Preload("Values", orderedValues).First(&vt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vt, nil
}

// FindTypesByIDs loads the requested types with their values. Missing ids are
// simply absent from the result.
func (r *Repository) FindTypesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.VariantType, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.VariantType
	err := r.db.WithContext(ctx).
		Preload("Values", orderedValues).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	return rows, err
}

// CreateType inserts a variant type.
func (r *Repository) CreateType(ctx context.Context, vt *models.VariantType) error {
	return r.db.WithContext(ctx).Omit("Values").Create(vt).Error
}

// SaveType updates every column of the type, leaving its values alone.
func (r *Repository) SaveType(ctx context.Context, vt *models.VariantType) error {
	return r.db.WithContext(ctx).Omit("Values").Save(vt).Error
}

// DeleteType removes a type and its values.
func (r *Repository) DeleteType(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := r.db.WithContext(ctx).Where("variant_type_id = ?", id).Delete(&models.VariantValue{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VariantType{})
	return res.RowsAffected, res.Error
}

// FindValue loads one variant value.
func (r *Repository) FindValue(ctx context.Context, id uuid.UUID) (*models.VariantValue, error) {
	var value models.VariantValue
	if err := r.db.WithContext(ctx).First(&value, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &value, nil
}

// CreateValue inserts a value.
func (r *Repository) CreateValue(ctx context.Context, value *models.VariantValue) error {
	return r.db.WithContext(ctx).Create(value).Error
}

// SaveValue updates every column of the value.
func (r *Repository) SaveValue(ctx context.Context, value *models.VariantValue) error {
	return r.db.WithContext(ctx).Save(value).Error
}

// DeleteValue removes a value.
func (r *Repository) DeleteValue(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VariantValue{})
	return res.RowsAffected, res.Error
}

// ListCombinations returns the product's combinations, newest first.
func (r *Repository) ListCombinations(ctx context.Context, productID uuid.UUID) ([]models.VariantCombination, error) {
	var rows []models.VariantCombination
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindCombinationByID loads one combination.
func (r *Repository) FindCombinationByID(ctx context.Context, id uuid.UUID) (*models.VariantCombination, error) {
	var combination models.VariantCombination
	if err := r.db.WithContext(ctx).First(&combination, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &combination, nil
}

// FindCombinationBySKU loads the combination carrying sku.
func (r *Repository) FindCombinationBySKU(ctx context.Context, sku string) (*models.VariantCombination, error) {
	var combination models.VariantCombination
	if err := r.db.WithContext(ctx).First(&combination, "variant_sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &combination, nil
}

// SKUExists reports whether a combination other than excludeID uses sku.
func (r *Repository) SKUExists(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.VariantCombination{}).Where("variant_sku = ?", sku)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistingSKUs returns the subset of skus already taken.
func (r *Repository) ExistingSKUs(ctx context.Context, skus []string) (map[string]struct{}, error) {
	taken := make(map[string]struct{})
	if len(skus) == 0 {
		return taken, nil
	}
	var found []string
	err := r.db.WithContext(ctx).
		Model(&models.VariantCombination{}).
		Where("variant_sku IN ?", skus).
		Pluck("variant_sku", &found).
		Error
	if err != nil {
		return nil, err
	}
	for _, sku := range found {
		taken[sku] = struct{}{}
	}
	return taken, nil
}

// CreateCombination inserts a combination.
func (r *Repository) CreateCombination(ctx context.Context, combination *models.VariantCombination) error {
	return r.db.WithContext(ctx).Create(combination).Error
}

// CreateCombinations inserts combinations in batches; ids are populated in place.
func (r *Repository) CreateCombinations(ctx context.Context, rows []models.VariantCombination) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&rows, 100).Error
}

// SaveCombination updates every column of the combination.
func (r *Repository) SaveCombination(ctx context.Context, combination *models.VariantCombination) error {
	return r.db.WithContext(ctx).Save(combination).Error
}

// DeleteCombination removes a combination. Tiers scoped to it go with it.
func (r *Repository) DeleteCombination(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := r.db.WithContext(ctx).Where("variant_combination_id = ?", id).Delete(&models.PricingTier{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VariantCombination{})
	return res.RowsAffected, res.Error
}
