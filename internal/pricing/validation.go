package pricing

import (
	"errors"
	"fmt"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// TierInput is a tier as submitted for create, bulk replace and import.
// Nil numeric pointers mean the field was omitted.
type TierInput struct {
	ProductID            uuid.UUID
	VariantCombinationID *uuid.UUID
	UnitType             string
	MinQuantity          *decimal.Decimal
	MaxQuantity          *decimal.Decimal
	Price                *decimal.Decimal
	CostPrice            *decimal.Decimal
	DiscountPercent      *decimal.Decimal
	IsActive             *bool
	SortOrder            int
}

var (
	errProductRequired  = errors.New("product id is required")
	errMinRequired      = errors.New("minimum quantity is required")
	errMinPositive      = errors.New("minimum quantity must be greater than zero")
	errMaxPositive      = errors.New("maximum quantity must be a positive number")
	errMaxAboveMin      = errors.New("maximum quantity must be greater than minimum quantity")
	errPriceRequired    = errors.New("price is required")
	errPriceNegative    = errors.New("price cannot be negative")
	errCostNegative     = errors.New("cost price cannot be negative")
	errDiscountRange    = errors.New("discount percent must be between 0 and 100")
	errUnitTypeUnknown  = errors.New("unit type is not supported")
	errVariantIDInvalid = errors.New("variant combination id is invalid")
)

// ValidateTier checks every rule and returns all violations combined, or nil.
func ValidateTier(in TierInput) error {
	var err error

	if in.ProductID == uuid.Nil {
		err = multierr.Append(err, errProductRequired)
	}
	if in.VariantCombinationID != nil && *in.VariantCombinationID == uuid.Nil {
		err = multierr.Append(err, errVariantIDInvalid)
	}

	// out-of-domain numbers are reported and kept out of the comparisons below
	minOK := checkDomain(&err, "minimum quantity", types.Amount, in.MinQuantity)
	maxOK := checkDomain(&err, "maximum quantity", types.Amount, in.MaxQuantity)
	priceOK := checkDomain(&err, "price", types.Amount, in.Price)
	checkDomain(&err, "cost price", types.Amount, in.CostPrice)
	discountOK := checkDomain(&err, "discount percent", types.Percent, in.DiscountPercent)

	switch {
	case in.MinQuantity == nil:
		err = multierr.Append(err, errMinRequired)
	case !in.MinQuantity.IsPositive():
		err = multierr.Append(err, errMinPositive)
	}

	if in.MaxQuantity != nil {
		switch {
		case !in.MaxQuantity.IsPositive():
			err = multierr.Append(err, errMaxPositive)
		case minOK && maxOK && in.MinQuantity != nil && in.MaxQuantity.LessThanOrEqual(*in.MinQuantity):
			err = multierr.Append(err, errMaxAboveMin)
		}
	}

	switch {
	case in.Price == nil:
		err = multierr.Append(err, errPriceRequired)
	case priceOK && in.Price.IsNegative():
		err = multierr.Append(err, errPriceNegative)
	}

	if in.CostPrice != nil && in.CostPrice.IsNegative() {
		err = multierr.Append(err, errCostNegative)
	}
	if discountOK && in.DiscountPercent != nil && (in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred)) {
		err = multierr.Append(err, errDiscountRange)
	}

	if _, parseErr := enums.ParseUnitType(in.UnitType); parseErr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %q", errUnitTypeUnknown, in.UnitType))
	}

	return err
}

// checkDomain appends a violation when v cannot be stored in its column and
// reports whether v is safe to compare. Absent values pass.
func checkDomain(err *error, field string, domain types.Numeric, v *decimal.Decimal) bool {
	if v == nil {
		return true
	}
	if domainErr := domain.Check(*v); domainErr != nil {
		*err = multierr.Append(*err, fmt.Errorf("%s %w", field, domainErr))
		return false
	}
	return true
}

// ValidationMessages flattens a combined validation error.
func ValidationMessages(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func validationError(err error) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "tier validation failed").
		WithDetails(map[string]any{"errors": ValidationMessages(err)})
}
