package enums

import "fmt"

// VariantKind controls how a variant type is presented to shoppers.
type VariantKind string

const (
	VariantKindDropdown    VariantKind = "dropdown"
	VariantKindColor       VariantKind = "color"
	VariantKindText        VariantKind = "text"
	VariantKindMultiselect VariantKind = "multiselect"
)

const DefaultVariantKind = VariantKindDropdown

var validVariantKinds = []VariantKind{
	VariantKindDropdown,
	VariantKindColor,
	VariantKindText,
	VariantKindMultiselect,
}

// String implements fmt.Stringer.
func (k VariantKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known VariantKind.
func (k VariantKind) IsValid() bool {
	for _, candidate := range validVariantKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseVariantKind converts raw input into a VariantKind; empty input yields dropdown.
func ParseVariantKind(value string) (VariantKind, error) {
	if value == "" {
		return DefaultVariantKind, nil
	}
	for _, candidate := range validVariantKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variant kind %q", value)
}
