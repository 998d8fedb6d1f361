package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Nullable records whether an optional JSON field was sent at all, so a
// partial update can tell "clear it" (null) from "leave it" (absent).
// Valid is true once the key appears; Value is nil for an explicit null.
type Nullable[T any] struct {
	Valid bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	n.Valid = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}
	var parsed T
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Value = &parsed
	return nil
}

type NullableUUID = Nullable[uuid.UUID]

// NullableDecimal adds the storage conversion for money and quantity fields.
type NullableDecimal struct {
	Nullable[decimal.Decimal]
}

// NullDecimal converts the value into the column representation.
func (n NullableDecimal) NullDecimal() decimal.NullDecimal {
	if n.Value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *n.Value, Valid: true}
}
