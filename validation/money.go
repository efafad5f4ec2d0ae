// Package validation normalizes and rejects tool input before it reaches a
// provider. Money math is exact decimal; nothing in this package rounds
// through binary floats.
package validation

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/shopspring/decimal"
)

// MaxAmount is the largest money value a tool accepts.
var MaxAmount = decimal.NewFromInt(1_000_000)

// ParseAmount validates a money amount from its string form. The value
// must be a base-10 decimal, not negative, with at most two fractional
// digits. The result is normalized to exactly two fractional digits.
// Values with excess precision are rejected, never rounded.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fieldError(field, "amount is required")
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fieldError(field, "amount must be a decimal number")
	}
	if value.IsNegative() {
		return decimal.Zero, fieldError(field, "amount must not be negative")
	}
	if value.GreaterThan(MaxAmount) {
		return decimal.Zero, fieldError(field, "amount exceeds the 1,000,000 maximum")
	}
	if value.Exponent() < -2 {
		return decimal.Zero, fieldError(field, "amount must not have more than two decimal places")
	}
	return value.Round(2), nil
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func fieldError(field, message string) *goerrors.Error {
	return goerrors.NewValidation(message, goerrors.FieldError{
		Field:   field,
		Message: message,
	})
}
