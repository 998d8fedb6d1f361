package variants

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReasonSKUConflict marks a generated combination whose SKU stayed taken
// after every suffix extension.
const ReasonSKUConflict = "sku_conflict"

// suffixStep is how many hex chars a colliding suffix grows by per retry.
const suffixStep = 2

type plannedCombination struct {
	index      int
	selections []models.VariantSelection
	name       string
	sku        string
	conflict   bool
}

// Generate materializes one combination per tuple of the Cartesian product of
// the given types' values. Dry runs only report what would be created.
func (s *service) Generate(ctx context.Context, input GenerateInput) (*GenerationDTO, error) {
	if err := checkTypeIDs(input.VariantTypeIDs); err != nil {
		return nil, err
	}
	base := input.BaseData
	if err := checkCombinationNumbers(base.Price, base.CostPrice, base.StockQuantity); err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	axes, err := s.loadAxes(ctx, product.ID, input.VariantTypeIDs)
	if err != nil {
		return nil, err
	}
	counts := make([]int, len(axes))
	for i, ax := range axes {
		counts[i] = len(ax.values)
	}
	total := CountCombinations(counts)
	s.metrics.ObserveGenerationSize(total)
	if total > s.cfg.MaxGeneratedCombinations {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many combinations requested").
			WithDetails(map[string]any{
				"combinations": total,
				"max":          s.cfg.MaxGeneratedCombinations,
			})
	}

	plan, err := s.planCombinations(ctx, product.SKU, base.VariantSKU, cartesian(axes))
	if err != nil {
		return nil, err
	}

	out := &GenerationDTO{ProductID: product.ID, Combinations: total, DryRun: input.DryRun}
	if input.DryRun {
		out.Preview = make([]PreviewItem, 0, len(plan))
		for _, p := range plan {
			out.Preview = append(out.Preview, PreviewItem{
				VariantSKU:    p.sku,
				VariantName:   p.name,
				VariantData:   VariantData(p.selections),
				VariantValues: p.selections,
				SKUConflict:   p.conflict,
			})
		}
		return out, nil
	}

	rows := make([]models.VariantCombination, 0, len(plan))
	for _, p := range plan {
		if p.conflict {
			continue
		}
		rows = append(rows, newGeneratedCombination(product.ID, p, base))
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateCombinations(ctx, rows)
	}); err != nil {
		return nil, mapCombinationWriteError(err, "insert generated combinations")
	}

	ids := make(map[int]uuid.UUID, len(rows))
	next := 0
	for _, p := range plan {
		if p.conflict {
			continue
		}
		ids[p.index] = rows[next].ID
		next++
	}

	result := types.NewBatchResult(len(plan))
	for _, p := range plan {
		if p.conflict {
			result.AddFailed(p.index, p.name, ReasonSKUConflict, fmt.Sprintf("variant sku already exists: %s", p.sku))
			continue
		}
		result.AddCreated(p.index, ids[p.index], p.name)
	}
	out.Result = result

	s.metrics.AddGenerated(result.CreatedCount, result.FailedCount)
	if s.logg != nil {
		logCtx := s.logg.WithProductID(ctx, product.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"combinations": total,
			"created":      result.CreatedCount,
			"failed":       result.FailedCount,
		})
		s.logg.Info(logCtx, "variant combinations generated")
	}
	return out, nil
}

func checkTypeIDs(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant_type_ids is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant type id is invalid")
		}
		if _, dup := seen[id]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant type listed more than once").
				WithDetails(map[string]any{"variant_type_id": id.String()})
		}
		seen[id] = struct{}{}
	}
	return nil
}

// loadAxes resolves the type ids in request order. Every type must exist,
// belong to the product and carry at least one value.
func (s *service) loadAxes(ctx context.Context, productID uuid.UUID, typeIDs []uuid.UUID) ([]axis, error) {
	rows, err := s.repo.FindTypesByIDs(ctx, typeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant types")
	}
	byID := make(map[uuid.UUID]models.VariantType, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	axes := make([]axis, 0, len(typeIDs))
	for _, id := range typeIDs {
		vt, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant type not found").
				WithDetails(map[string]any{"variant_type_id": id.String()})
		}
		if vt.ProductID != productID {
			return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "variant type belongs to another product").
				WithDetails(map[string]any{"variant_type_id": id.String()})
		}
		if len(vt.Values) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeIntegrity, fmt.Sprintf("variant type %q has no values", vt.Name)).
				WithDetails(map[string]any{"variant_type_id": id.String()})
		}
		values := make([]string, len(vt.Values))
		for i, v := range vt.Values {
			values[i] = v.Value
		}
		axes = append(axes, axis{variantType: vt, values: values})
	}
	return axes, nil
}

// planCombinations names every tuple and picks its SKU. A synthesized SKU that
// is taken, in storage or earlier in the batch, is retried with a longer
// suffix up to the configured maximum. A caller-supplied SKU is used as is.
func (s *service) planCombinations(ctx context.Context, productSKU, suppliedSKU string, tuples [][]models.VariantSelection) ([]plannedCombination, error) {
	first := make([]string, len(tuples))
	for i, tuple := range tuples {
		if suppliedSKU != "" {
			first[i] = suppliedSKU
			continue
		}
		first[i] = SynthesizeSKU(productSKU, selectionValues(tuple), s.cfg.SKUSuffixLength)
	}
	taken, err := s.repo.ExistingSKUs(ctx, first)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check variant skus")
	}

	used := make(map[string]struct{}, len(tuples))
	plan := make([]plannedCombination, 0, len(tuples))
	for i, tuple := range tuples {
		values := selectionValues(tuple)
		p := plannedCombination{
			index:      i,
			selections: tuple,
			name:       CombinationName(values),
			sku:        first[i],
		}

		if suppliedSKU != "" {
			_, inStore := taken[p.sku]
			_, inBatch := used[p.sku]
			p.conflict = inStore || inBatch
		} else {
			p.conflict = true
			for _, length := range suffixLengths(s.cfg.SKUSuffixLength, s.cfg.SKUSuffixMaxLength) {
				candidate := SynthesizeSKU(productSKU, values, length)
				if _, inBatch := used[candidate]; inBatch {
					continue
				}
				free, err := s.skuFree(ctx, candidate, length == s.cfg.SKUSuffixLength, taken)
				if err != nil {
					return nil, err
				}
				if free {
					p.sku = candidate
					p.conflict = false
					break
				}
			}
		}

		if !p.conflict {
			used[p.sku] = struct{}{}
		}
		plan = append(plan, p)
	}
	return plan, nil
}

func (s *service) skuFree(ctx context.Context, sku string, prechecked bool, taken map[string]struct{}) (bool, error) {
	if prechecked {
		_, exists := taken[sku]
		return !exists, nil
	}
	exists, err := s.repo.SKUExists(ctx, sku, nil)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check variant sku")
	}
	return !exists, nil
}

// suffixLengths lists the suffix lengths to try: start, start+2, ... and
// finally limit itself.
func suffixLengths(start, limit int) []int {
	var out []int
	for length := start; length < limit; length += suffixStep {
		out = append(out, length)
	}
	return append(out, limit)
}

func newGeneratedCombination(productID uuid.UUID, p plannedCombination, base BaseData) models.VariantCombination {
	combination := models.VariantCombination{
		ProductID:     productID,
		VariantSKU:    p.sku,
		VariantName:   p.name,
		Price:         decimalPtrToNull(base.Price),
		CostPrice:     decimalPtrToNull(base.CostPrice),
		StockQuantity: base.StockQuantity,
		ImageURL:      base.ImageURL,
		IsActive:      true,
		VariantData:   p.selections,
	}
	if base.IsActive != nil {
		combination.IsActive = *base.IsActive
	}
	return combination
}
