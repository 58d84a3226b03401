package payment

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "whole rupees", amount: "499.00", want: 49900},
		{name: "paise", amount: "10.05", want: 1005},
		{name: "zero", amount: "0", want: 0},
		{name: "half up", amount: "0.005", want: 1},
		{name: "below half", amount: "0.004", want: 0},
		{name: "three decimals", amount: "12.345", want: 1235},
		{name: "negative", amount: "-1.00", wantErr: true},
		{name: "overflow", amount: "100000000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 99, 100, 49900, 123456789, math.MaxInt64 / 100} {
		got, err := ToMinorUnits(ToMajorUnits(minor))
		require.NoError(t, err)
		assert.Equal(t, minor, got)
	}
}

func TestToMajorUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("499").Equal(ToMajorUnits(49900)))
	assert.Equal(t, "10.05", ToMajorUnits(1005).StringFixed(2))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 499.00 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(499)))

	for _, in := range []string{"", "   ", "abc", "1,000"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestAmountFromFloat(t *testing.T) {
	d, err := AmountFromFloat(12.5)
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := AmountFromFloat(f)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	got, err := normalizeCurrency(" inr ")
	require.NoError(t, err)
	assert.Equal(t, "INR", got)

	for _, in := range []string{"", "IN", "INRR", "1NR"} {
		_, err := normalizeCurrency(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}
