package variants

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantValueDTO is the API shape of a variant value.
type VariantValueDTO struct {
	ID            uuid.UUID `json:"id"`
	VariantTypeID uuid.UUID `json:"variant_type_id"`
	Value         string    `json:"value"`
	DisplayValue  string    `json:"display_value"`
	ColorCode     *string   `json:"color_code"`
	SortOrder     int       `json:"sort_order"`
}

// VariantTypeDTO is a variant type with its ordered values.
type VariantTypeDTO struct {
	ID         uuid.UUID         `json:"id"`
	ProductID  uuid.UUID         `json:"product_id"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	Kind       enums.VariantKind `json:"type"`
	IsRequired bool              `json:"is_required"`
	SortOrder  int               `json:"sort_order"`
	Values     []VariantValueDTO `json:"values"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// VariantData renders selections as a JSON object keyed by variant type id,
// keeping selection order.
type VariantData []models.VariantSelection

// MarshalJSON writes the keys in selection order.
func (d VariantData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sel := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sel.VariantTypeID.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(sel.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CombinationDTO is the API shape of a variant combination.
type CombinationDTO struct {
	ID            uuid.UUID                 `json:"id"`
	ProductID     uuid.UUID                 `json:"product_id"`
	VariantSKU    string                    `json:"variant_sku"`
	VariantName   string                    `json:"variant_name"`
	Price         *decimal.Decimal          `json:"price"`
	CostPrice     *decimal.Decimal          `json:"cost_price"`
	StockQuantity int                       `json:"stock_quantity"`
	ImageURL      *string                   `json:"image_url"`
	IsActive      bool                      `json:"is_active"`
	VariantData   VariantData               `json:"variant_data"`
	VariantValues []models.VariantSelection `json:"variant_values"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// ProductVariantsDTO is the full variant view of a product.
type ProductVariantsDTO struct {
	ProductID    uuid.UUID        `json:"product_id"`
	VariantTypes []VariantTypeDTO `json:"variant_types"`
	Combinations []CombinationDTO `json:"variant_combinations"`
}

// PreviewItem is one combination a generation would create.
type PreviewItem struct {
	VariantSKU    string                    `json:"variant_sku"`
	VariantName   string                    `json:"variant_name"`
	VariantData   VariantData               `json:"variant_data"`
	VariantValues []models.VariantSelection `json:"variant_values"`
	SKUConflict   bool                      `json:"sku_conflict,omitempty"`
}

// GenerationDTO reports a bulk generation. Preview is only filled on dry runs;
// Result only on real runs.
type GenerationDTO struct {
	ProductID    uuid.UUID          `json:"product_id"`
	Combinations int                `json:"combinations"`
	DryRun       bool               `json:"dry_run"`
	Preview      []PreviewItem      `json:"preview,omitempty"`
	Result       *types.BatchResult `json:"result,omitempty"`
}

// TypeInput creates a variant type.
type TypeInput struct {
	ProductID  uuid.UUID
	Name       string
	Kind       string
	IsRequired bool
	SortOrder  int
}

// TypeUpdateInput patches a variant type; nil fields are left alone.
type TypeUpdateInput struct {
	Name       *string
	Kind       *string
	IsRequired *bool
	SortOrder  *int
}

// ValueInput adds a value to a variant type.
type ValueInput struct {
	VariantTypeID uuid.UUID
	Value         string
	DisplayValue  string
	ColorCode     *string
	SortOrder     int
}

// ValueUpdateInput patches a value; nil fields are left alone.
type ValueUpdateInput struct {
	Value        *string
	DisplayValue *string
	ColorCode    *string
	SortOrder    *int
}

// CombinationInput creates a combination. An empty VariantName is derived
// from the selections.
type CombinationInput struct {
	ProductID     uuid.UUID
	VariantSKU    string
	VariantName   string
	Price         *decimal.Decimal
	CostPrice     *decimal.Decimal
	StockQuantity int
	ImageURL      *string
	IsActive      *bool
	VariantValues []models.VariantSelection
}

// CombinationUpdateInput patches a combination. Replacing VariantValues
// re-derives the name unless VariantName is also given.
type CombinationUpdateInput struct {
	VariantSKU    *string
	VariantName   *string
	Price         types.NullableDecimal
	CostPrice     types.NullableDecimal
	StockQuantity *int
	ImageURL      *string
	IsActive      *bool
	VariantValues *[]models.VariantSelection
}

// BaseData is copied onto every generated combination.
type BaseData struct {
	VariantSKU    string
	Price         *decimal.Decimal
	CostPrice     *decimal.Decimal
	StockQuantity int
	ImageURL      *string
	IsActive      *bool
}

// GenerateInput asks for every combination of the given types' values.
type GenerateInput struct {
	ProductID      uuid.UUID
	VariantTypeIDs []uuid.UUID
	BaseData       BaseData
	DryRun         bool
}

func NewVariantValueDTO(v models.VariantValue) VariantValueDTO {
	return VariantValueDTO{
		ID:            v.ID,
		VariantTypeID: v.VariantTypeID,
		Value:         v.Value,
		DisplayValue:  v.DisplayValue,
		ColorCode:     v.ColorCode,
		SortOrder:     v.SortOrder,
	}
}

func NewVariantTypeDTO(t *models.VariantType) *VariantTypeDTO {
	values := make([]VariantValueDTO, 0, len(t.Values))
	for _, v := range t.Values {
		values = append(values, NewVariantValueDTO(v))
	}
	return &VariantTypeDTO{
		ID:         t.ID,
		ProductID:  t.ProductID,
		Name:       t.Name,
		Slug:       t.Slug,
		Kind:       t.Kind,
		IsRequired: t.IsRequired,
		SortOrder:  t.SortOrder,
		Values:     values,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func NewVariantTypeDTOs(rows []models.VariantType) []VariantTypeDTO {
	out := make([]VariantTypeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewVariantTypeDTO(&rows[i]))
	}
	return out
}

func NewCombinationDTO(c *models.VariantCombination) *CombinationDTO {
	selections := append([]models.VariantSelection{}, c.VariantData...)
	return &CombinationDTO{
		ID:            c.ID,
		ProductID:     c.ProductID,
		VariantSKU:    c.VariantSKU,
		VariantName:   c.VariantName,
		Price:         nullDecimalPtr(c.Price),
		CostPrice:     nullDecimalPtr(c.CostPrice),
		StockQuantity: c.StockQuantity,
		ImageURL:      c.ImageURL,
		IsActive:      c.IsActive,
		VariantData:   VariantData(selections),
		VariantValues: selections,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func NewCombinationDTOs(rows []models.VariantCombination) []CombinationDTO {
	out := make([]CombinationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewCombinationDTO(&rows[i]))
	}
	return out
}

func nullDecimalPtr(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

func decimalPtrToNull(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}
