package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() TierInput {
	return TierInput{
		ProductID:   uuid.New(),
		MinQuantity: decPtr("1"),
		Price:       decPtr("10"),
	}
}

func TestValidateTierAcceptsMinimalInput(t *testing.T) {
	require.NoError(t, ValidateTier(validInput()))

	in := validInput()
	in.Price = decPtr("0")
	in.UnitType = "kg"
	in.MaxQuantity = decPtr("5")
	in.DiscountPercent = decPtr("100")
	in.CostPrice = decPtr("0")
	require.NoError(t, ValidateTier(in), "zero price and boundary discount are valid")
}

func TestValidateTierCollectsEveryViolation(t *testing.T) {
	in := TierInput{
		MinQuantity:     decPtr("10"),
		MaxQuantity:     decPtr("5"),
		Price:           decPtr("-1"),
		CostPrice:       decPtr("-2"),
		DiscountPercent: decPtr("101"),
		UnitType:        "furlong",
	}

	err := ValidateTier(in)
	require.Error(t, err)
	msgs := ValidationMessages(err)
	assert.Len(t, msgs, 6)
	assert.Contains(t, msgs, "product id is required")
	assert.Contains(t, msgs, "maximum quantity must be greater than minimum quantity")
	assert.Contains(t, msgs, "price cannot be negative")
	assert.Contains(t, msgs, "cost price cannot be negative")
	assert.Contains(t, msgs, "discount percent must be between 0 and 100")
	assert.Contains(t, msgs, `unit type is not supported: "furlong"`)
}

func TestValidateTierRequiredFields(t *testing.T) {
	err := ValidateTier(TierInput{ProductID: uuid.New()})
	msgs := ValidationMessages(err)
	assert.ElementsMatch(t, []string{"minimum quantity is required", "price is required"}, msgs)
}

func TestValidateTierQuantityRules(t *testing.T) {
	in := validInput()
	in.MinQuantity = decPtr("0")
	assert.Contains(t, ValidationMessages(ValidateTier(in)), "minimum quantity must be greater than zero")

	in = validInput()
	in.MaxQuantity = decPtr("1")
	assert.Contains(t, ValidationMessages(ValidateTier(in)), "maximum quantity must be greater than minimum quantity")

	in = validInput()
	in.MaxQuantity = decPtr("-3")
	assert.Contains(t, ValidationMessages(ValidateTier(in)), "maximum quantity must be a positive number")

	in = validInput()
	in.DiscountPercent = decPtr("-0.01")
	assert.Contains(t, ValidationMessages(ValidateTier(in)), "discount percent must be between 0 and 100")
}

func TestValidationMessagesNil(t *testing.T) {
	assert.Empty(t, ValidationMessages(nil))
}

func TestValidateTierColumnDomain(t *testing.T) {
	in := validInput()
	in.MinQuantity = decPtr("123456789012")
	in.Price = decPtr("0.000001")
	msgs := ValidationMessages(ValidateTier(in))
	assert.Contains(t, msgs, "minimum quantity out of range: maximum is 99999999.9999")
	assert.Contains(t, msgs, "price too many decimal places: at most 4 allowed")

	in = validInput()
	in.MinQuantity = decPtr("1.23456")
	assert.Equal(t, []string{"minimum quantity too many decimal places: at most 4 allowed"}, ValidationMessages(ValidateTier(in)))

	in = validInput()
	in.DiscountPercent = decPtr("12.345")
	assert.Equal(t, []string{"discount percent too many decimal places: at most 2 allowed"}, ValidationMessages(ValidateTier(in)))

	in = validInput()
	in.MinQuantity = decPtr("1.2345")
	in.MaxQuantity = decPtr("99999999.9999")
	in.CostPrice = decPtr("4.5000")
	require.NoError(t, ValidateTier(in))
}

func TestValidateTierOversizedQuantitySkipsComparison(t *testing.T) {
	in := validInput()
	in.MinQuantity = decPtr("1e30000000")
	in.MaxQuantity = decPtr("2e30000000")
	msgs := ValidationMessages(ValidateTier(in))
	assert.Len(t, msgs, 2)
	assert.Contains(t, msgs, "minimum quantity out of range: maximum is 99999999.9999")
	assert.Contains(t, msgs, "maximum quantity out of range: maximum is 99999999.9999")
}
