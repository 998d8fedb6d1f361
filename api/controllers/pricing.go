package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

// tierFields is the body shared by single create, bulk replace and import.
// Numeric presence and range rules are checked by the pricing service so
// every violation is reported together.
type tierFields struct {
	VariantCombinationID *uuid.UUID       `json:"variant_combination_id,omitempty"`
	UnitType             string           `json:"unit_type,omitempty" validate:"max=32"`
	MinQuantity          *decimal.Decimal `json:"min_quantity"`
	MaxQuantity          *decimal.Decimal `json:"max_quantity,omitempty"`
	Price                *decimal.Decimal `json:"price"`
	CostPrice            *decimal.Decimal `json:"cost_price,omitempty"`
	DiscountPercent      *decimal.Decimal `json:"discount_percent,omitempty"`
	IsActive             *bool            `json:"is_active,omitempty"`
	SortOrder            int              `json:"sort_order"`
}

func (f tierFields) toInput(productID uuid.UUID) pricing.TierInput {
	return pricing.TierInput{
		ProductID:            productID,
		VariantCombinationID: f.VariantCombinationID,
		UnitType:             strings.TrimSpace(f.UnitType),
		MinQuantity:          f.MinQuantity,
		MaxQuantity:          f.MaxQuantity,
		Price:                f.Price,
		CostPrice:            f.CostPrice,
		DiscountPercent:      f.DiscountPercent,
		IsActive:             f.IsActive,
		SortOrder:            f.SortOrder,
	}
}

type createTierRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	tierFields
}

type tierBatchRequest struct {
	ProductID uuid.UUID    `json:"product_id" validate:"required"`
	Tiers     []tierFields `json:"tiers" validate:"required,dive"`
}

func (r tierBatchRequest) toInputs() []pricing.TierInput {
	items := make([]pricing.TierInput, 0, len(r.Tiers))
	for _, tier := range r.Tiers {
		items = append(items, tier.toInput(r.ProductID))
	}
	return items
}

type updateTierRequest struct {
	VariantCombinationID types.NullableUUID    `json:"variant_combination_id"`
	UnitType             *string               `json:"unit_type,omitempty" validate:"omitempty,max=32"`
	MinQuantity          *decimal.Decimal      `json:"min_quantity,omitempty"`
	MaxQuantity          types.NullableDecimal `json:"max_quantity"`
	Price                *decimal.Decimal      `json:"price,omitempty"`
	CostPrice            types.NullableDecimal `json:"cost_price"`
	DiscountPercent      types.NullableDecimal `json:"discount_percent"`
	IsActive             *bool                 `json:"is_active,omitempty"`
	SortOrder            *int                  `json:"sort_order,omitempty"`
}

func (r updateTierRequest) toInput() pricing.TierUpdateInput {
	return pricing.TierUpdateInput{
		VariantCombinationID: r.VariantCombinationID,
		UnitType:             r.UnitType,
		MinQuantity:          r.MinQuantity,
		MaxQuantity:          r.MaxQuantity,
		Price:                r.Price,
		CostPrice:            r.CostPrice,
		DiscountPercent:      r.DiscountPercent,
		IsActive:             r.IsActive,
		SortOrder:            r.SortOrder,
	}
}

func pricingUnavailable(w http.ResponseWriter, r *http.Request, svc pricing.Service, logg *logger.Logger) bool {
	if svc != nil {
		return false
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
	return true
}

// PricingListByProduct returns every tier of a product, inactive included,
// with the active-tier summary.
func PricingListByProduct(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func PricingListByVariant(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		variantID, err := validators.ParseUUIDParam(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tiers, err := svc.ListByVariant(r.Context(), variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tiers)
	}
}

func PricingGetTier(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		tierID, err := validators.ParseUUIDParam(r, "tierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.GetTier(r.Context(), tierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

func PricingCreateTier(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}

		var payload createTierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.CreateTier(r.Context(), payload.toInput(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tier)
	}
}

func PricingUpdateTier(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		tierID, err := validators.ParseUUIDParam(r, "tierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.UpdateTier(r.Context(), tierID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

func PricingDeleteTier(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		tierID, err := validators.ParseUUIDParam(r, "tierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteTier(r.Context(), tierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// PricingCalculate quotes a quantity. The variant may come from the path or
// from the variant_id query parameter.
func PricingCalculate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity, err := validators.ParseDecimalParam(r, "quantity", types.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := variantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.CalculatePrice(r.Context(), productID, quantity, variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// PricingResolveTier returns the tier that applies to a quantity, or null.
func PricingResolveTier(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity, err := validators.ParseDecimalParam(r, "quantity", types.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := variantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.Resolve(r.Context(), productID, quantity, variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

func variantFromRequest(r *http.Request) (*uuid.UUID, error) {
	if strings.TrimSpace(chi.URLParam(r, "variantId")) != "" {
		id, err := validators.ParseUUIDParam(r, "variantId")
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	return validators.ParseQueryUUID(r, "variant_id")
}

func PricingSummary(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func PricingHasTiers(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		has, err := svc.HasTiers(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product_id": productID, "has_tiers": has})
	}
}

// PricingBulkReplace swaps a product's whole tier set in one transaction.
func PricingBulkReplace(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}

		var payload tierBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ReplaceAll(r.Context(), payload.ProductID, payload.toInputs())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func PricingExport(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tiers, err := svc.Export(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product_id": productID, "tiers": tiers})
	}
}

// PricingImport appends tiers to a product without touching existing ones.
func PricingImport(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}

		var payload tierBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Import(r.Context(), payload.ProductID, payload.toInputs())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func PricingUnits(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingUnavailable(w, r, svc, logg) {
			return
		}
		responses.WriteSuccess(w, svc.Units())
	}
}
