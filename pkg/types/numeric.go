package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// maxInputDigits caps the coefficient length accepted before any arithmetic,
// trailing zeros included ("1.5000" is fine, a thousand-digit string is not).
const maxInputDigits = 32

var (
	ErrNumericOutOfRange = errors.New("out of range")
	ErrNumericTooPrecise = errors.New("too many decimal places")
)

// Numeric is the domain of a NUMERIC(Precision, Scale) column.
type Numeric struct {
	Precision int32
	Scale     int32
}

var (
	// Amount covers quantities, prices and costs: NUMERIC(12,4).
	Amount = Numeric{Precision: 12, Scale: 4}
	// Percent covers discount_percent: NUMERIC(5,2).
	Percent = Numeric{Precision: 5, Scale: 2}
)

// Max is the largest storable magnitude, e.g. 99999999.9999 for Amount.
func (n Numeric) Max() decimal.Decimal {
	return decimal.New(1, n.Precision-n.Scale).Sub(decimal.New(1, -n.Scale))
}

// Check reports whether d can be stored without rounding or overflow. It only
// inspects the coefficient and exponent, so hostile inputs like "1e30000000"
// are rejected without being expanded.
func (n Numeric) Check(d decimal.Decimal) error {
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return nil
	}
	coef.Abs(coef)
	if len(coef.Text(10)) > maxInputDigits {
		return fmt.Errorf("%w: more than %d digits", ErrNumericTooPrecise, maxInputDigits)
	}

	exp := d.Exponent()
	if exp > n.Precision {
		return fmt.Errorf("%w: maximum is %s", ErrNumericOutOfRange, n.Max())
	}
	ten := big.NewInt(10)
	rem := new(big.Int)
	for exp < -n.Scale {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 {
			return fmt.Errorf("%w: at most %d allowed", ErrNumericTooPrecise, n.Scale)
		}
		coef = q
		exp++
	}

	if decimal.NewFromBigInt(coef, exp).GreaterThan(n.Max()) {
		return fmt.Errorf("%w: maximum is %s", ErrNumericOutOfRange, n.Max())
	}
	return nil
}
