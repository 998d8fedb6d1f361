package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericMax(t *testing.T) {
	assert.Equal(t, "99999999.9999", Amount.Max().String())
	assert.Equal(t, "999.99", Percent.Max().String())
}

func TestNumericCheck(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  error
	}{
		{name: "zero", value: "0"},
		{name: "whole", value: "15"},
		{name: "max scale", value: "1.2345"},
		{name: "trailing zeros", value: "1.50000000"},
		{name: "largest", value: "99999999.9999"},
		{name: "negative within range", value: "-3.5"},
		{name: "too precise", value: "1.23456", want: ErrNumericTooPrecise},
		{name: "tiny", value: "0.000001", want: ErrNumericTooPrecise},
		{name: "overflow", value: "123456789012", want: ErrNumericOutOfRange},
		{name: "just over", value: "100000000", want: ErrNumericOutOfRange},
		{name: "huge exponent", value: "1e30000000", want: ErrNumericOutOfRange},
		{name: "huge negative exponent", value: "1e-30000000", want: ErrNumericTooPrecise},
		{name: "too many digits", value: "1.000000000000000000000000000000001", want: ErrNumericTooPrecise},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Amount.Check(decimal.RequireFromString(tc.value))
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNumericCheckRejectsHugeExponentQuickly(t *testing.T) {
	start := time.Now()
	require.Error(t, Amount.Check(decimal.RequireFromString("1e30000000")))
	require.Error(t, Amount.Check(decimal.RequireFromString("-1e-30000000")))
	assert.Less(t, time.Since(start), time.Second)
}

func TestPercentCheck(t *testing.T) {
	require.NoError(t, Percent.Check(decimal.RequireFromString("12.5")))
	require.ErrorIs(t, Percent.Check(decimal.RequireFromString("12.345")), ErrNumericTooPrecise)
	require.ErrorIs(t, Percent.Check(decimal.RequireFromString("1000")), ErrNumericOutOfRange)
}
