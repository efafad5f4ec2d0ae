package validation

import (
	"fmt"
	"strings"
)

// Enum values are case-normalized before matching; unknown values are
// rejected, never coerced to a default.

// NormalizeContactType maps contact type synonyms to Clio's canonical
// Person/Company values.
func NormalizeContactType(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "person", "individual":
		return "Person", nil
	case "company", "organization", "business":
		return "Company", nil
	default:
		return "", fieldError("type", fmt.Sprintf("unknown contact type %q: expected person or company", strings.TrimSpace(raw)))
	}
}

// NormalizeMatterStatus maps matter status values to their canonical form.
func NormalizeMatterStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open":
		return "Open", nil
	case "closed":
		return "Closed", nil
	case "pending":
		return "Pending", nil
	default:
		return "", fieldError("status", fmt.Sprintf("unknown matter status %q: expected open, closed, or pending", strings.TrimSpace(raw)))
	}
}

// NormalizeActivityType maps activity kinds to Clio's entry types.
func NormalizeActivityType(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "time", "time_entry", "timeentry":
		return "TimeEntry", nil
	case "expense", "expense_entry", "expenseentry":
		return "ExpenseEntry", nil
	default:
		return "", fieldError("activity_type", fmt.Sprintf("unknown activity type %q: expected time or expense", strings.TrimSpace(raw)))
	}
}

// NormalizeParticipantRole validates a matter participant role.
func NormalizeParticipantRole(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "client":
		return "client", nil
	case "responsible_attorney":
		return "responsible_attorney", nil
	case "originating_attorney":
		return "originating_attorney", nil
	default:
		return "", fieldError("role", fmt.Sprintf("unknown participant role %q", strings.TrimSpace(raw)))
	}
}
