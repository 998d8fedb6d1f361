package variants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// variantSKUConstraint matches both the Postgres index name and the sqlite
// "UNIQUE constraint failed: product_variant_combinations.variant_sku" text.
const variantSKUConstraint = "variant_sku"

// Service manages variant types, values and combinations.
type Service interface {
	ListTypes(ctx context.Context, productID uuid.UUID) ([]VariantTypeDTO, error)
	GetType(ctx context.Context, typeID uuid.UUID) (*VariantTypeDTO, error)
	CreateType(ctx context.Context, input TypeInput) (*VariantTypeDTO, error)
	UpdateType(ctx context.Context, typeID uuid.UUID, input TypeUpdateInput) (*VariantTypeDTO, error)
	DeleteType(ctx context.Context, typeID uuid.UUID) error

	CreateValue(ctx context.Context, input ValueInput) (*VariantValueDTO, error)
	UpdateValue(ctx context.Context, valueID uuid.UUID, input ValueUpdateInput) (*VariantValueDTO, error)
	DeleteValue(ctx context.Context, valueID uuid.UUID) error

	ListCombinations(ctx context.Context, productID uuid.UUID) ([]CombinationDTO, error)
	GetCombination(ctx context.Context, combinationID uuid.UUID) (*CombinationDTO, error)
	GetCombinationBySKU(ctx context.Context, sku string) (*CombinationDTO, error)
	CreateCombination(ctx context.Context, input CombinationInput) (*CombinationDTO, error)
	UpdateCombination(ctx context.Context, combinationID uuid.UUID, input CombinationUpdateInput) (*CombinationDTO, error)
	DeleteCombination(ctx context.Context, combinationID uuid.UUID) error

	SKUExists(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
	GenerateVariantName(ctx context.Context, productID uuid.UUID, selections []models.VariantSelection) (string, error)
	ProductVariants(ctx context.Context, productID uuid.UUID) (*ProductVariantsDTO, error)
	Generate(ctx context.Context, input GenerateInput) (*GenerationDTO, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	tx       db.TxRunner
	products productLoader
	cfg      config.CatalogConfig
	validate *validator.Validate
	metrics  *metrics.CatalogMetrics
	logg     *logger.Logger
}

// NewService constructs a variant service instance.
func NewService(repo *Repository, tx db.TxRunner, products productLoader, cfg config.CatalogConfig, m *metrics.CatalogMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if cfg.MaxGeneratedCombinations <= 0 {
		return nil, fmt.Errorf("max generated combinations must be positive")
	}
	if cfg.SKUSuffixLength <= 0 || cfg.SKUSuffixMaxLength < cfg.SKUSuffixLength {
		return nil, fmt.Errorf("invalid sku suffix lengths %d/%d", cfg.SKUSuffixLength, cfg.SKUSuffixMaxLength)
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		cfg:      cfg,
		validate: validator.New(),
		metrics:  m,
		logg:     logg,
	}, nil
}

func (s *service) ListTypes(ctx context.Context, productID uuid.UUID) ([]VariantTypeDTO, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTypes(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variant types")
	}
	return NewVariantTypeDTOs(rows), nil
}

func (s *service) GetType(ctx context.Context, typeID uuid.UUID) (*VariantTypeDTO, error) {
	vt, err := s.loadType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	return NewVariantTypeDTO(vt), nil
}

func (s *service) CreateType(ctx context.Context, input TypeInput) (*VariantTypeDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant type name is required")
	}
	kind, err := enums.ParseVariantKind(input.Kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	if _, err := s.loadProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	vt := &models.VariantType{
		ProductID:  input.ProductID,
		Name:       name,
		Slug:       Slugify(name),
		Kind:       kind,
		IsRequired: input.IsRequired,
		SortOrder:  input.SortOrder,
	}
	if err := s.repo.CreateType(ctx, vt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert variant type")
	}
	vt.Values = []models.VariantValue{}
	return NewVariantTypeDTO(vt), nil
}

func (s *service) UpdateType(ctx context.Context, typeID uuid.UUID, input TypeUpdateInput) (*VariantTypeDTO, error) {
	vt, err := s.loadType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant type name is required")
		}
		vt.Name = name
		vt.Slug = Slugify(name)
	}
	if input.Kind != nil {
		kind, err := enums.ParseVariantKind(*input.Kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
		vt.Kind = kind
	}
	if input.IsRequired != nil {
		vt.IsRequired = *input.IsRequired
	}
	if input.SortOrder != nil {
		vt.SortOrder = *input.SortOrder
	}

	values := vt.Values
	vt.Values = nil
	if err := s.repo.SaveType(ctx, vt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant type")
	}
	vt.Values = values
	return NewVariantTypeDTO(vt), nil
}

func (s *service) DeleteType(ctx context.Context, typeID uuid.UUID) error {
	var removed int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).DeleteType(ctx, typeID)
		removed = n
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant type")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant type not found")
	}
	return nil
}

func (s *service) CreateValue(ctx context.Context, input ValueInput) (*VariantValueDTO, error) {
	value := strings.TrimSpace(input.Value)
	if value == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant value is required")
	}
	if err := s.checkColorCode(input.ColorCode); err != nil {
		return nil, err
	}
	if _, err := s.loadType(ctx, input.VariantTypeID); err != nil {
		return nil, err
	}

	row := &models.VariantValue{
		VariantTypeID: input.VariantTypeID,
		Value:         value,
		DisplayValue:  strings.TrimSpace(input.DisplayValue),
		ColorCode:     input.ColorCode,
		SortOrder:     input.SortOrder,
	}
	if err := s.repo.CreateValue(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert variant value")
	}
	dto := NewVariantValueDTO(*row)
	return &dto, nil
}

func (s *service) UpdateValue(ctx context.Context, valueID uuid.UUID, input ValueUpdateInput) (*VariantValueDTO, error) {
	row, err := s.repo.FindValue(ctx, valueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant value not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant value")
	}
	if input.Value != nil {
		value := strings.TrimSpace(*input.Value)
		if value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant value is required")
		}
		row.Value = value
	}
	if input.DisplayValue != nil {
		row.DisplayValue = strings.TrimSpace(*input.DisplayValue)
	}
	if row.DisplayValue == "" {
		row.DisplayValue = row.Value
	}
	if input.ColorCode != nil {
		if err := s.checkColorCode(input.ColorCode); err != nil {
			return nil, err
		}
		row.ColorCode = input.ColorCode
	}
	if input.SortOrder != nil {
		row.SortOrder = *input.SortOrder
	}
	if err := s.repo.SaveValue(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant value")
	}
	dto := NewVariantValueDTO(*row)
	return &dto, nil
}

func (s *service) DeleteValue(ctx context.Context, valueID uuid.UUID) error {
	removed, err := s.repo.DeleteValue(ctx, valueID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant value")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant value not found")
	}
	return nil
}

func (s *service) ListCombinations(ctx context.Context, productID uuid.UUID) ([]CombinationDTO, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListCombinations(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variant combinations")
	}
	return NewCombinationDTOs(rows), nil
}

func (s *service) GetCombination(ctx context.Context, combinationID uuid.UUID) (*CombinationDTO, error) {
	combination, err := s.loadCombination(ctx, combinationID)
	if err != nil {
		return nil, err
	}
	return NewCombinationDTO(combination), nil
}

func (s *service) GetCombinationBySKU(ctx context.Context, sku string) (*CombinationDTO, error) {
	combination, err := s.repo.FindCombinationBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant combination not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant combination")
	}
	return NewCombinationDTO(combination), nil
}

func (s *service) CreateCombination(ctx context.Context, input CombinationInput) (*CombinationDTO, error) {
	sku := strings.TrimSpace(input.VariantSKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant sku is required")
	}
	if err := checkCombinationNumbers(input.Price, input.CostPrice, input.StockQuantity); err != nil {
		return nil, err
	}
	if err := checkSelections(input.VariantValues); err != nil {
		return nil, err
	}
	if _, err := s.loadProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}
	if err := s.ensureSKUFree(ctx, sku, nil); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.VariantName)
	if name == "" {
		derived, err := s.GenerateVariantName(ctx, input.ProductID, input.VariantValues)
		if err != nil {
			return nil, err
		}
		name = derived
	}

	combination := &models.VariantCombination{
		ProductID:     input.ProductID,
		VariantSKU:    sku,
		VariantName:   name,
		Price:         decimalPtrToNull(input.Price),
		CostPrice:     decimalPtrToNull(input.CostPrice),
		StockQuantity: input.StockQuantity,
		ImageURL:      input.ImageURL,
		IsActive:      true,
		VariantData:   append([]models.VariantSelection{}, input.VariantValues...),
	}
	if input.IsActive != nil {
		combination.IsActive = *input.IsActive
	}
	if err := s.repo.CreateCombination(ctx, combination); err != nil {
		return nil, mapCombinationWriteError(err, "insert variant combination")
	}
	return NewCombinationDTO(combination), nil
}

func (s *service) UpdateCombination(ctx context.Context, combinationID uuid.UUID, input CombinationUpdateInput) (*CombinationDTO, error) {
	combination, err := s.loadCombination(ctx, combinationID)
	if err != nil {
		return nil, err
	}

	if input.VariantSKU != nil {
		sku := strings.TrimSpace(*input.VariantSKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant sku is required")
		}
		if sku != combination.VariantSKU {
			if err := s.ensureSKUFree(ctx, sku, &combination.ID); err != nil {
				return nil, err
			}
		}
		combination.VariantSKU = sku
	}
	if input.Price.Valid {
		combination.Price = input.Price.NullDecimal()
	}
	if input.CostPrice.Valid {
		combination.CostPrice = input.CostPrice.NullDecimal()
	}
	if input.StockQuantity != nil {
		combination.StockQuantity = *input.StockQuantity
	}
	if err := checkCombinationNumbers(nullDecimalPtr(combination.Price), nullDecimalPtr(combination.CostPrice), combination.StockQuantity); err != nil {
		return nil, err
	}
	if input.ImageURL != nil {
		combination.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		combination.IsActive = *input.IsActive
	}
	if input.VariantValues != nil {
		selections := *input.VariantValues
		if err := checkSelections(selections); err != nil {
			return nil, err
		}
		combination.VariantData = append([]models.VariantSelection{}, selections...)
		if input.VariantName == nil {
			name, err := s.GenerateVariantName(ctx, combination.ProductID, selections)
			if err != nil {
				return nil, err
			}
			combination.VariantName = name
		}
	}
	if input.VariantName != nil {
		combination.VariantName = strings.TrimSpace(*input.VariantName)
	}

	if err := s.repo.SaveCombination(ctx, combination); err != nil {
		return nil, mapCombinationWriteError(err, "update variant combination")
	}
	return NewCombinationDTO(combination), nil
}

func (s *service) DeleteCombination(ctx context.Context, combinationID uuid.UUID) error {
	var removed int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).DeleteCombination(ctx, combinationID)
		removed = n
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant combination")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant combination not found")
	}
	return nil
}

func (s *service) SKUExists(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "variant sku is required")
	}
	exists, err := s.repo.SKUExists(ctx, sku, excludeID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check variant sku")
	}
	return exists, nil
}

func (s *service) GenerateVariantName(ctx context.Context, productID uuid.UUID, selections []models.VariantSelection) (string, error) {
	if len(selections) == 0 {
		return "", nil
	}
	variantTypes, err := s.repo.ListTypes(ctx, productID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variant types")
	}
	return GenerateVariantName(variantTypes, selections), nil
}

func (s *service) ProductVariants(ctx context.Context, productID uuid.UUID) (*ProductVariantsDTO, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	variantTypes, err := s.repo.ListTypes(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variant types")
	}
	combinations, err := s.repo.ListCombinations(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variant combinations")
	}
	return &ProductVariantsDTO{
		ProductID:    productID,
		VariantTypes: NewVariantTypeDTOs(variantTypes),
		Combinations: NewCombinationDTOs(combinations),
	}, nil
}

func (s *service) ensureSKUFree(ctx context.Context, sku string, excludeID *uuid.UUID) error {
	exists, err := s.repo.SKUExists(ctx, sku, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check variant sku")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "variant sku already exists").
			WithDetails(map[string]any{"variant_sku": sku})
	}
	return nil
}

func (s *service) checkColorCode(code *string) error {
	if code == nil || *code == "" {
		return nil
	}
	if err := s.validate.Var(*code, "hexcolor"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("color code must be a hex color: %q", *code))
	}
	return nil
}

func checkCombinationNumbers(price, costPrice *decimal.Decimal, stock int) error {
	if err := checkAmount("price", price); err != nil {
		return err
	}
	if err := checkAmount("cost price", costPrice); err != nil {
		return err
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	return nil
}

// checkAmount keeps a money value inside its NUMERIC(12,4) column.
func checkAmount(field string, v *decimal.Decimal) error {
	if v == nil {
		return nil
	}
	if err := types.Amount.Check(*v); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s %s", field, err))
	}
	if v.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" cannot be negative")
	}
	return nil
}

// checkSelections rejects a combination that picks the same type twice.
func checkSelections(selections []models.VariantSelection) error {
	seen := make(map[uuid.UUID]struct{}, len(selections))
	for _, sel := range selections {
		if sel.VariantTypeID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant_type_id is required for every variant value")
		}
		if _, dup := seen[sel.VariantTypeID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant type selected more than once").
				WithDetails(map[string]any{"variant_type_id": sel.VariantTypeID.String()})
		}
		seen[sel.VariantTypeID] = struct{}{}
	}
	return nil
}

func mapCombinationWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, variantSKUConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "variant sku already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) loadType(ctx context.Context, typeID uuid.UUID) (*models.VariantType, error) {
	vt, err := s.repo.FindType(ctx, typeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant type")
	}
	return vt, nil
}

func (s *service) loadCombination(ctx context.Context, combinationID uuid.UUID) (*models.VariantCombination, error) {
	combination, err := s.repo.FindCombinationByID(ctx, combinationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant combination not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant combination")
	}
	return combination, nil
}
