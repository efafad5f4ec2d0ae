package validation

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate validates a calendar date in YYYY-MM-DD form. Dates are plain
// calendar values; no timezone is inferred or attached.
func ParseDate(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fieldError(field, "date is required")
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return "", fieldError(field, "date must be in YYYY-MM-DD format")
	}
	// Round-trip so 2024-2-3 style inputs are rejected, not normalized.
	if parsed.Format(dateLayout) != trimmed {
		return "", fieldError(field, "date must be in YYYY-MM-DD format")
	}
	return trimmed, nil
}

// ParseOptionalDate validates a date when present; empty input is allowed.
func ParseOptionalDate(field, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return ParseDate(field, raw)
}
