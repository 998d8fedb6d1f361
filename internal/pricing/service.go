package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes tier management, price resolution and bulk tier writes.
type Service interface {
	ListByProduct(ctx context.Context, productID uuid.UUID) (*ProductTiersDTO, error)
	ListByVariant(ctx context.Context, variantID uuid.UUID) ([]TierDTO, error)
	GetTier(ctx context.Context, tierID uuid.UUID) (*TierDTO, error)
	CreateTier(ctx context.Context, input TierInput) (*TierDTO, error)
	UpdateTier(ctx context.Context, tierID uuid.UUID, input TierUpdateInput) (*TierDTO, error)
	DeleteTier(ctx context.Context, tierID uuid.UUID) error
	Resolve(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, variantID *uuid.UUID) (*TierDTO, error)
	CalculatePrice(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, variantID *uuid.UUID) (*PriceQuoteDTO, error)
	Summary(ctx context.Context, productID uuid.UUID) (*SummaryDTO, error)
	HasTiers(ctx context.Context, productID uuid.UUID) (bool, error)
	ReplaceAll(ctx context.Context, productID uuid.UUID, items []TierInput) (*types.BatchResult, error)
	Export(ctx context.Context, productID uuid.UUID) ([]TierDTO, error)
	Import(ctx context.Context, productID uuid.UUID, items []TierInput) (*types.BatchResult, error)
	Units() []UnitDTO
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type combinationLoader interface {
	FindCombinationByID(ctx context.Context, id uuid.UUID) (*models.VariantCombination, error)
}

// Batch failure reasons.
const (
	ReasonValidation = "validation"
	ReasonNotFound   = "not_found"
	ReasonIntegrity  = "integrity"
)

type service struct {
	repo         *Repository
	tx           db.TxRunner
	products     productLoader
	combinations combinationLoader
	metrics      *metrics.CatalogMetrics
	logg         *logger.Logger
}

// NewService constructs a pricing service instance.
func NewService(repo *Repository, tx db.TxRunner, products productLoader, combinations combinationLoader, m *metrics.CatalogMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if combinations == nil {
		return nil, fmt.Errorf("combination loader required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		products:     products,
		combinations: combinations,
		metrics:      m,
		logg:         logg,
	}, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) (*ProductTiersDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProduct(ctx, productID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tiers")
	}
	return &ProductTiersDTO{
		ProductID: productID,
		Tiers:     NewTierDTOs(rows),
		Summary:   NewSummaryDTO(Summarize(product.Price, rows)),
	}, nil
}

func (s *service) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]TierDTO, error) {
	if _, err := s.loadCombination(ctx, variantID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByVariant(ctx, variantID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variant tiers")
	}
	return NewTierDTOs(rows), nil
}

func (s *service) GetTier(ctx context.Context, tierID uuid.UUID) (*TierDTO, error) {
	tier, err := s.loadTier(ctx, tierID)
	if err != nil {
		return nil, err
	}
	return NewTierDTO(tier), nil
}

func (s *service) CreateTier(ctx context.Context, input TierInput) (*TierDTO, error) {
	if err := ValidateTier(input); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.loadProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}
	if err := s.checkScope(ctx, input.ProductID, input.VariantCombinationID); err != nil {
		return nil, err
	}

	tier := tierFromInput(input)
	created, err := s.repo.Create(ctx, &tier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("insert tier (product_id=%s min_quantity=%s)", input.ProductID, input.MinQuantity),
		)
	}
	return NewTierDTO(created), nil
}

func (s *service) UpdateTier(ctx context.Context, tierID uuid.UUID, input TierUpdateInput) (*TierDTO, error) {
	tier, err := s.loadTier(ctx, tierID)
	if err != nil {
		return nil, err
	}

	merged := inputFromTier(tier)
	applyUpdate(&merged, input)
	if err := ValidateTier(merged); err != nil {
		return nil, validationError(err)
	}
	if input.VariantCombinationID.Valid {
		if err := s.checkScope(ctx, tier.ProductID, merged.VariantCombinationID); err != nil {
			return nil, err
		}
	}

	updated := tierFromInput(merged)
	updated.ID = tier.ID
	updated.CreatedAt = tier.CreatedAt
	saved, err := s.repo.Update(ctx, &updated)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tier")
	}
	return NewTierDTO(saved), nil
}

func (s *service) DeleteTier(ctx context.Context, tierID uuid.UUID) error {
	removed, err := s.repo.Delete(ctx, tierID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete tier")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pricing tier not found")
	}
	return nil
}

func (s *service) Resolve(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, variantID *uuid.UUID) (*TierDTO, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	tier, err := s.resolve(ctx, productID, quantity, variantID)
	if err != nil {
		return nil, err
	}
	return NewTierDTO(tier), nil
}

func (s *service) CalculatePrice(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, variantID *uuid.UUID) (*PriceQuoteDTO, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if variantID != nil {
		if err := s.checkScope(ctx, productID, variantID); err != nil {
			return nil, err
		}
	}
	tier, err := s.resolve(ctx, productID, quantity, variantID)
	if err != nil {
		return nil, err
	}
	return NewPriceQuoteDTO(productID, variantID, QuoteFor(product.Price, tier, quantity)), nil
}

func (s *service) Summary(ctx context.Context, productID uuid.UUID) (*SummaryDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProduct(ctx, productID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tiers")
	}
	return NewSummaryDTO(Summarize(product.Price, rows)), nil
}

func (s *service) HasTiers(ctx context.Context, productID uuid.UUID) (bool, error) {
	count, err := s.repo.CountActive(ctx, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tiers")
	}
	return count > 0, nil
}

// ReplaceAll swaps the product's whole tier set for the valid items in one
// transaction. Invalid items are reported as failed outcomes; when none are
// valid the call is rejected and the existing tiers are kept.
func (s *service) ReplaceAll(ctx context.Context, productID uuid.UUID, items []TierInput) (*types.BatchResult, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	prepared, failures, err := s.prepareBatch(ctx, productID, items)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		s.metrics.IncBulkReplace("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no valid tiers supplied; existing tiers kept").
			WithDetails(buildBatchResult(len(items), prepared, failures))
	}

	var removed int64
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		n, err := txRepo.DeleteByProduct(ctx, productID)
		if err != nil {
			return err
		}
		removed = n
		return insertPrepared(ctx, txRepo, prepared)
	}); err != nil {
		s.metrics.IncBulkReplace("failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace tiers")
	}

	result := buildBatchResult(len(items), prepared, failures)
	s.metrics.IncBulkReplace("replaced")
	s.metrics.AddBatchItems("tier_replace", result.CreatedCount, result.FailedCount)
	s.logInfo(ctx, productID, map[string]any{
		"removed": removed,
		"created": result.CreatedCount,
		"failed":  result.FailedCount,
	}, "pricing tiers replaced")
	return result, nil
}

func (s *service) Export(ctx context.Context, productID uuid.UUID) ([]TierDTO, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProduct(ctx, productID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export tiers")
	}
	return NewTierDTOs(rows), nil
}

// Import adds the valid items to the product's existing tiers.
func (s *service) Import(ctx context.Context, productID uuid.UUID, items []TierInput) (*types.BatchResult, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	prepared, failures, err := s.prepareBatch(ctx, productID, items)
	if err != nil {
		return nil, err
	}
	if len(prepared) > 0 {
		if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return insertPrepared(ctx, s.repo.WithTx(tx), prepared)
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import tiers")
		}
	}

	result := buildBatchResult(len(items), prepared, failures)
	s.metrics.AddBatchItems("tier_import", result.CreatedCount, result.FailedCount)
	s.logInfo(ctx, productID, map[string]any{
		"created": result.CreatedCount,
		"failed":  result.FailedCount,
	}, "pricing tiers imported")
	return result, nil
}

func (s *service) Units() []UnitDTO {
	units := enums.UnitTypes()
	out := make([]UnitDTO, 0, len(units))
	for _, u := range units {
		out = append(out, UnitDTO{Value: u, Label: u.Label()})
	}
	return out
}

func (s *service) resolve(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, variantID *uuid.UUID) (*models.PricingTier, error) {
	candidates, err := s.repo.ListCandidates(ctx, productID, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier candidates")
	}
	tier := Resolve(candidates, quantity, variantID)
	s.metrics.ObserveTierResolution(tier != nil, tier != nil && tier.VariantScoped())
	return tier, nil
}

// checkQuantity keeps requested quantities inside the tier column domain so
// resolution and totals never work on unbounded numbers.
func checkQuantity(quantity decimal.Decimal) error {
	if err := types.Amount.Check(quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity "+err.Error())
	}
	if !quantity.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	return nil
}

type preparedTier struct {
	index int
	tier  models.PricingTier
}

type batchFailure struct {
	index  int
	label  string
	reason string
	errs   []string
}

// prepareBatch validates every item. Business failures become batchFailures;
// storage errors abort.
func (s *service) prepareBatch(ctx context.Context, productID uuid.UUID, items []TierInput) ([]preparedTier, []batchFailure, error) {
	prepared := make([]preparedTier, 0, len(items))
	var failures []batchFailure
	for i, item := range items {
		item.ProductID = productID
		label := rangeLabel(item.MinQuantity, item.MaxQuantity)
		if err := ValidateTier(item); err != nil {
			failures = append(failures, batchFailure{index: i, label: label, reason: ReasonValidation, errs: ValidationMessages(err)})
			continue
		}
		if err := s.checkScope(ctx, productID, item.VariantCombinationID); err != nil {
			typed := pkgerrors.As(err)
			switch {
			case typed != nil && typed.Code() == pkgerrors.CodeNotFound:
				failures = append(failures, batchFailure{index: i, label: label, reason: ReasonNotFound, errs: []string{typed.Message()}})
				continue
			case typed != nil && typed.Code() == pkgerrors.CodeIntegrity:
				failures = append(failures, batchFailure{index: i, label: label, reason: ReasonIntegrity, errs: []string{typed.Message()}})
				continue
			}
			return nil, nil, err
		}
		prepared = append(prepared, preparedTier{index: i, tier: tierFromInput(item)})
	}
	return prepared, failures, nil
}

func insertPrepared(ctx context.Context, repo *Repository, prepared []preparedTier) error {
	rows := make([]models.PricingTier, len(prepared))
	for i := range prepared {
		rows[i] = prepared[i].tier
	}
	if err := repo.CreateMany(ctx, rows); err != nil {
		return err
	}
	for i := range prepared {
		prepared[i].tier.ID = rows[i].ID
	}
	return nil
}

func buildBatchResult(total int, prepared []preparedTier, failures []batchFailure) *types.BatchResult {
	result := types.NewBatchResult(total)
	type entry struct {
		index   int
		created *preparedTier
		failed  *batchFailure
	}
	entries := make([]entry, 0, len(prepared)+len(failures))
	for i := range prepared {
		entries = append(entries, entry{index: prepared[i].index, created: &prepared[i]})
	}
	for i := range failures {
		entries = append(entries, entry{index: failures[i].index, failed: &failures[i]})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	for _, e := range entries {
		if e.created != nil {
			tier := e.created.tier
			result.AddCreated(e.index, tier.ID, rangeLabel(&tier.MinQuantity, nullDecimalPtr(tier.MaxQuantity)))
			continue
		}
		result.AddFailed(e.index, e.failed.label, e.failed.reason, e.failed.errs...)
	}
	return result
}

func rangeLabel(lo, hi *decimal.Decimal) string {
	if lo == nil {
		return ""
	}
	if hi == nil {
		return boundLabel(*lo) + "+"
	}
	return boundLabel(*lo) + "-" + boundLabel(*hi)
}

// boundLabel never expands a value outside the column domain.
func boundLabel(d decimal.Decimal) string {
	if types.Amount.Check(d) != nil {
		return "?"
	}
	return d.String()
}

func (s *service) checkScope(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) error {
	if variantID == nil {
		return nil
	}
	combination, err := s.loadCombination(ctx, *variantID)
	if err != nil {
		return err
	}
	if combination.ProductID != productID {
		return pkgerrors.New(pkgerrors.CodeIntegrity, "variant combination belongs to another product").
			WithDetails(map[string]any{"variant_combination_id": variantID.String()})
	}
	return nil
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

func (s *service) loadCombination(ctx context.Context, id uuid.UUID) (*models.VariantCombination, error) {
	combination, err := s.combinations.FindCombinationByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant combination not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant combination")
	}
	return combination, nil
}

func (s *service) loadTier(ctx context.Context, tierID uuid.UUID) (*models.PricingTier, error) {
	tier, err := s.repo.FindByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing tier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier")
	}
	return tier, nil
}

func (s *service) logInfo(ctx context.Context, productID uuid.UUID, fields map[string]any, msg string) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithProductID(ctx, productID.String())
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}

func tierFromInput(in TierInput) models.PricingTier {
	unit, _ := enums.ParseUnitType(in.UnitType)
	tier := models.PricingTier{
		ProductID:            in.ProductID,
		VariantCombinationID: in.VariantCombinationID,
		UnitType:             unit,
		MaxQuantity:          decimalPtrToNull(in.MaxQuantity),
		CostPrice:            decimalPtrToNull(in.CostPrice),
		DiscountPercent:      decimalPtrToNull(in.DiscountPercent),
		IsActive:             true,
		SortOrder:            in.SortOrder,
	}
	if in.MinQuantity != nil {
		tier.MinQuantity = *in.MinQuantity
	}
	if in.Price != nil {
		tier.Price = *in.Price
	}
	if in.IsActive != nil {
		tier.IsActive = *in.IsActive
	}
	return tier
}

func inputFromTier(t *models.PricingTier) TierInput {
	minQty := t.MinQuantity
	price := t.Price
	active := t.IsActive
	return TierInput{
		ProductID:            t.ProductID,
		VariantCombinationID: t.VariantCombinationID,
		UnitType:             string(t.UnitType),
		MinQuantity:          &minQty,
		MaxQuantity:          nullDecimalPtr(t.MaxQuantity),
		Price:                &price,
		CostPrice:            nullDecimalPtr(t.CostPrice),
		DiscountPercent:      nullDecimalPtr(t.DiscountPercent),
		IsActive:             &active,
		SortOrder:            t.SortOrder,
	}
}

func applyUpdate(in *TierInput, update TierUpdateInput) {
	if update.VariantCombinationID.Valid {
		in.VariantCombinationID = update.VariantCombinationID.Value
	}
	if update.UnitType != nil {
		in.UnitType = *update.UnitType
	}
	if update.MinQuantity != nil {
		in.MinQuantity = update.MinQuantity
	}
	if update.MaxQuantity.Valid {
		in.MaxQuantity = update.MaxQuantity.Value
	}
	if update.Price != nil {
		in.Price = update.Price
	}
	if update.CostPrice.Valid {
		in.CostPrice = update.CostPrice.Value
	}
	if update.DiscountPercent.Valid {
		in.DiscountPercent = update.DiscountPercent.Value
	}
	if update.IsActive != nil {
		in.IsActive = update.IsActive
	}
	if update.SortOrder != nil {
		in.SortOrder = *update.SortOrder
	}
}
