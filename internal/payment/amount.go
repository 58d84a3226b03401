package payment

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnitFactor is fixed at 100: only 2-decimal currencies are supported.
var minorUnitFactor = decimal.NewFromInt(100)

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ToMinorUnits converts a major-unit amount (e.g. rupees) to the gateway's
// smallest unit (e.g. paise), rounding half up.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, newInvalidAmount("amount must not be negative", amount.String())
	}
	minor := amount.Mul(minorUnitFactor).Round(0)
	if minor.GreaterThan(maxMinorUnits) {
		return 0, newInvalidAmount("amount is too large", amount.String())
	}
	return minor.IntPart(), nil
}

// ToMajorUnits converts gateway minor units back to a major-unit amount.
func ToMajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ParseAmount parses a decimal string such as "499.00".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, newInvalidAmount("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, newInvalidAmount("amount is not numeric", s)
	}
	return d, nil
}

// AmountFromFloat converts a float amount, rejecting NaN and infinities.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, newInvalidAmount("amount is not finite")
	}
	return decimal.NewFromFloat(f), nil
}

// normalizeCurrency upper-cases and validates an ISO 4217 code.
func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", newInvalidAmount("currency code must be a 3-letter ISO code", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", newInvalidAmount("currency code must be a 3-letter ISO code", code)
		}
	}
	return code, nil
}
