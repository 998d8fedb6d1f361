package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/variants"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

const maxSKULength = 128

type selectionRequest struct {
	VariantTypeID uuid.UUID `json:"variant_type_id" validate:"required"`
	Value         string    `json:"value" validate:"required,max=255"`
}

func toSelections(in []selectionRequest) []models.VariantSelection {
	out := make([]models.VariantSelection, 0, len(in))
	for _, sel := range in {
		out = append(out, models.VariantSelection{
			VariantTypeID: sel.VariantTypeID,
			Value:         strings.TrimSpace(sel.Value),
		})
	}
	return out
}

type createTypeRequest struct {
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
	Name       string    `json:"name" validate:"required,max=255"`
	Kind       string    `json:"type,omitempty" validate:"omitempty,oneof=dropdown color text multiselect"`
	IsRequired bool      `json:"is_required"`
	SortOrder  int       `json:"sort_order"`
}

type updateTypeRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Kind       *string `json:"type,omitempty" validate:"omitempty,oneof=dropdown color text multiselect"`
	IsRequired *bool   `json:"is_required,omitempty"`
	SortOrder  *int    `json:"sort_order,omitempty"`
}

type createValueRequest struct {
	VariantTypeID uuid.UUID `json:"variant_type_id" validate:"required"`
	Value         string    `json:"value" validate:"required,max=255"`
	DisplayValue  string    `json:"display_value,omitempty" validate:"max=255"`
	ColorCode     *string   `json:"color_code,omitempty"`
	SortOrder     int       `json:"sort_order"`
}

type updateValueRequest struct {
	Value        *string `json:"value,omitempty" validate:"omitempty,max=255"`
	DisplayValue *string `json:"display_value,omitempty" validate:"omitempty,max=255"`
	ColorCode    *string `json:"color_code,omitempty"`
	SortOrder    *int    `json:"sort_order,omitempty"`
}

type createCombinationRequest struct {
	ProductID     uuid.UUID          `json:"product_id" validate:"required"`
	VariantSKU    string             `json:"variant_sku" validate:"required,max=128"`
	VariantName   string             `json:"variant_name,omitempty" validate:"max=255"`
	Price         *decimal.Decimal   `json:"price,omitempty"`
	CostPrice     *decimal.Decimal   `json:"cost_price,omitempty"`
	StockQuantity int                `json:"stock_quantity"`
	ImageURL      *string            `json:"image_url,omitempty"`
	IsActive      *bool              `json:"is_active,omitempty"`
	VariantValues []selectionRequest `json:"variant_values" validate:"required,min=1,dive"`
}

type updateCombinationRequest struct {
	VariantSKU    *string               `json:"variant_sku,omitempty" validate:"omitempty,max=128"`
	VariantName   *string               `json:"variant_name,omitempty" validate:"omitempty,max=255"`
	Price         types.NullableDecimal `json:"price"`
	CostPrice     types.NullableDecimal `json:"cost_price"`
	StockQuantity *int                  `json:"stock_quantity,omitempty"`
	ImageURL      *string               `json:"image_url,omitempty"`
	IsActive      *bool                 `json:"is_active,omitempty"`
	VariantValues []selectionRequest    `json:"variant_values,omitempty" validate:"omitempty,dive"`
}

func (r updateCombinationRequest) toInput() variants.CombinationUpdateInput {
	input := variants.CombinationUpdateInput{
		VariantSKU:    r.VariantSKU,
		VariantName:   r.VariantName,
		Price:         r.Price,
		CostPrice:     r.CostPrice,
		StockQuantity: r.StockQuantity,
		ImageURL:      r.ImageURL,
		IsActive:      r.IsActive,
	}
	if r.VariantValues != nil {
		selections := toSelections(r.VariantValues)
		input.VariantValues = &selections
	}
	return input
}

type baseDataRequest struct {
	VariantSKU    string           `json:"variant_sku,omitempty" validate:"max=128"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	StockQuantity int              `json:"stock_quantity"`
	ImageURL      *string          `json:"image_url,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

type generateRequest struct {
	ProductID      uuid.UUID       `json:"product_id" validate:"required"`
	VariantTypeIDs []uuid.UUID     `json:"variant_type_ids" validate:"required,min=1"`
	BaseData       baseDataRequest `json:"base_data"`
	DryRun         bool            `json:"dry_run"`
}

type variantNameRequest struct {
	ProductID     uuid.UUID          `json:"product_id" validate:"required"`
	VariantValues []selectionRequest `json:"variant_values" validate:"required,dive"`
}

func variantsUnavailable(w http.ResponseWriter, r *http.Request, svc variants.Service, logg *logger.Logger) bool {
	if svc != nil {
		return false
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
	return true
}

// VariantsForProduct returns a product's types with their values and every
// combination.
func VariantsForProduct(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ProductVariants(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func VariantListTypes(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListTypes(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func VariantGetType(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		typeID, err := validators.ParseUUIDParam(r, "typeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vt, err := svc.GetType(r.Context(), typeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vt)
	}
}

func VariantCreateType(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}

		var payload createTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vt, err := svc.CreateType(r.Context(), variants.TypeInput{
			ProductID:  payload.ProductID,
			Name:       payload.Name,
			Kind:       payload.Kind,
			IsRequired: payload.IsRequired,
			SortOrder:  payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vt)
	}
}

func VariantUpdateType(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		typeID, err := validators.ParseUUIDParam(r, "typeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vt, err := svc.UpdateType(r.Context(), typeID, variants.TypeUpdateInput{
			Name:       payload.Name,
			Kind:       payload.Kind,
			IsRequired: payload.IsRequired,
			SortOrder:  payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vt)
	}
}

func VariantDeleteType(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		typeID, err := validators.ParseUUIDParam(r, "typeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteType(r.Context(), typeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func VariantCreateValue(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}

		var payload createValueRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		value, err := svc.CreateValue(r.Context(), variants.ValueInput{
			VariantTypeID: payload.VariantTypeID,
			Value:         payload.Value,
			DisplayValue:  payload.DisplayValue,
			ColorCode:     payload.ColorCode,
			SortOrder:     payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, value)
	}
}

func VariantUpdateValue(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		valueID, err := validators.ParseUUIDParam(r, "valueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateValueRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		value, err := svc.UpdateValue(r.Context(), valueID, variants.ValueUpdateInput{
			Value:        payload.Value,
			DisplayValue: payload.DisplayValue,
			ColorCode:    payload.ColorCode,
			SortOrder:    payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, value)
	}
}

func VariantDeleteValue(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		valueID, err := validators.ParseUUIDParam(r, "valueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteValue(r.Context(), valueID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func VariantListCombinations(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCombinations(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func VariantGetCombination(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		combinationID, err := validators.ParseUUIDParam(r, "combinationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		combination, err := svc.GetCombination(r.Context(), combinationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, combination)
	}
}

func VariantGetCombinationBySKU(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		sku, err := validators.SanitizeString("sku", chi.URLParam(r, "sku"), maxSKULength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
			return
		}

		combination, err := svc.GetCombinationBySKU(r.Context(), sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, combination)
	}
}

func VariantCreateCombination(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}

		var payload createCombinationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sku, err := validators.SanitizeString("variant_sku", payload.VariantSKU, maxSKULength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		combination, err := svc.CreateCombination(r.Context(), variants.CombinationInput{
			ProductID:     payload.ProductID,
			VariantSKU:    sku,
			VariantName:   strings.TrimSpace(payload.VariantName),
			Price:         payload.Price,
			CostPrice:     payload.CostPrice,
			StockQuantity: payload.StockQuantity,
			ImageURL:      payload.ImageURL,
			IsActive:      payload.IsActive,
			VariantValues: toSelections(payload.VariantValues),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, combination)
	}
}

func VariantUpdateCombination(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		combinationID, err := validators.ParseUUIDParam(r, "combinationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCombinationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		combination, err := svc.UpdateCombination(r.Context(), combinationID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, combination)
	}
}

func VariantDeleteCombination(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		combinationID, err := validators.ParseUUIDParam(r, "combinationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCombination(r.Context(), combinationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// VariantCheckSKU answers whether a SKU is taken. exclude_id lets an edit
// form ignore the combination being edited.
func VariantCheckSKU(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}
		sku, err := validators.SanitizeString("sku", r.URL.Query().Get("sku"), maxSKULength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		excludeID, err := validators.ParseQueryUUID(r, "exclude_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exists, err := svc.SKUExists(r.Context(), sku, excludeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"sku": sku, "exists": exists})
	}
}

func VariantGenerateName(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}

		var payload variantNameRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name, err := svc.GenerateVariantName(r.Context(), payload.ProductID, toSelections(payload.VariantValues))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"variant_name": name})
	}
}

// VariantBulkCreate expands the cartesian product of the selected types into
// combinations. dry_run may be set in the body or as a query parameter.
func VariantBulkCreate(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if variantsUnavailable(w, r, svc, logg) {
			return
		}

		var payload generateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dryRun, err := validators.ParseQueryBool(r, "dry_run", payload.DryRun)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		baseSKU, err := validators.SanitizeString("base_data.variant_sku", payload.BaseData.VariantSKU, maxSKULength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Generate(r.Context(), variants.GenerateInput{
			ProductID:      payload.ProductID,
			VariantTypeIDs: payload.VariantTypeIDs,
			BaseData: variants.BaseData{
				VariantSKU:    baseSKU,
				Price:         payload.BaseData.Price,
				CostPrice:     payload.BaseData.CostPrice,
				StockQuantity: payload.BaseData.StockQuantity,
				ImageURL:      payload.BaseData.ImageURL,
				IsActive:      payload.BaseData.IsActive,
			},
			DryRun: dryRun,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.DryRun {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
