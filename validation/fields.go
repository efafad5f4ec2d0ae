package validation

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks the rough shape of an email address.
func ValidateEmail(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fieldError(field, "email is required")
	}
	if !emailPattern.MatchString(trimmed) {
		return "", fieldError(field, "email is not a valid address")
	}
	return trimmed, nil
}

// ValidatePhone requires at least ten digits, ignoring formatting.
func ValidatePhone(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fieldError(field, "phone number is required")
	}
	digits := 0
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 10 {
		return "", fieldError(field, "phone number must contain at least 10 digits")
	}
	return trimmed, nil
}

// RequireString rejects empty or whitespace-only values.
func RequireString(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fieldError(field, field+" is required")
	}
	return trimmed, nil
}
