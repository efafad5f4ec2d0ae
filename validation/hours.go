package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hoursIncrement = decimal.RequireFromString("0.1")
	hoursCeiling   = decimal.NewFromInt(24)
)

// ParseHours validates a billable duration in hours. The value must be
// positive and at most 24. Durations are rounded UP to the next 0.1-hour
// billing increment, so 1.01 bills as 1.1.
func ParseHours(field, raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fieldError(field, "hours are required")
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fieldError(field, "hours must be a decimal number")
	}
	if !value.IsPositive() {
		return decimal.Zero, fieldError(field, "hours must be greater than zero")
	}
	if value.GreaterThan(hoursCeiling) {
		return decimal.Zero, fieldError(field, "hours must not exceed 24")
	}
	rounded := value.Div(hoursIncrement).Ceil().Mul(hoursIncrement)
	if rounded.GreaterThan(hoursCeiling) {
		rounded = hoursCeiling
	}
	return rounded, nil
}

// FormatHours renders hours with one fractional digit.
func FormatHours(value decimal.Decimal) string {
	return value.StringFixed(1)
}
