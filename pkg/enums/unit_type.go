package enums

import "fmt"

// UnitType is the measurement unit a pricing tier's quantity is expressed in.
type UnitType string

const (
	UnitTypePiece  UnitType = "piece"
	UnitTypeKg     UnitType = "kg"
	UnitTypeGram   UnitType = "g"
	UnitTypeLiter  UnitType = "liter"
	UnitTypeMl     UnitType = "ml"
	UnitTypeMeter  UnitType = "meter"
	UnitTypeCm     UnitType = "cm"
	UnitTypePack   UnitType = "pack"
	UnitTypeBox    UnitType = "box"
	UnitTypeBundle UnitType = "bundle"
	UnitTypeDozen  UnitType = "dozen"
)

// DefaultUnitType applies when a tier omits its unit.
const DefaultUnitType = UnitTypePiece

var validUnitTypes = []UnitType{
	UnitTypePiece,
	UnitTypeKg,
	UnitTypeGram,
	UnitTypeLiter,
	UnitTypeMl,
	UnitTypeMeter,
	UnitTypeCm,
	UnitTypePack,
	UnitTypeBox,
	UnitTypeBundle,
	UnitTypeDozen,
}

var unitTypeLabels = map[UnitType]string{
	UnitTypePiece:  "Piece(s)",
	UnitTypeKg:     "Kilogram(s)",
	UnitTypeGram:   "Gram(s)",
	UnitTypeLiter:  "Liter(s)",
	UnitTypeMl:     "Milliliter(s)",
	UnitTypeMeter:  "Meter(s)",
	UnitTypeCm:     "Centimeter(s)",
	UnitTypePack:   "Pack(s)",
	UnitTypeBox:    "Box(es)",
	UnitTypeBundle: "Bundle(s)",
	UnitTypeDozen:  "Dozen",
}

// String implements fmt.Stringer.
func (u UnitType) String() string {
	return string(u)
}

// Label returns the display label, or the raw value for unknown units.
func (u UnitType) Label() string {
	if label, ok := unitTypeLabels[u]; ok {
		return label
	}
	return string(u)
}

// IsValid reports whether the value is a known UnitType.
func (u UnitType) IsValid() bool {
	_, ok := unitTypeLabels[u]
	return ok
}

// UnitTypes returns the unit table in display order.
func UnitTypes() []UnitType {
	out := make([]UnitType, len(validUnitTypes))
	copy(out, validUnitTypes)
	return out
}

// ParseUnitType converts raw input into a UnitType; empty input yields the default.
func ParseUnitType(value string) (UnitType, error) {
	if value == "" {
		return DefaultUnitType, nil
	}
	for _, candidate := range validUnitTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit type %q", value)
}
