package validation

import "strings"

// Cross-field rules: constraints that only hold between fields.

// ValidatePersonName enforces that person contacts carry at least one
// name part, while company contacts carry a company name.
func ValidatePersonName(contactType, firstName, lastName, companyName string) error {
	switch contactType {
	case "Person":
		if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
			return fieldError("first_name", "person contacts require at least a first or last name")
		}
	case "Company":
		if strings.TrimSpace(companyName) == "" {
			return fieldError("name", "company contacts require a name")
		}
	}
	return nil
}

// ValidateMatterClose enforces that closing a matter carries a close date.
func ValidateMatterClose(status, closeDate string) error {
	if status == "Closed" && strings.TrimSpace(closeDate) == "" {
		return fieldError("close_date", "close date is required when closing a matter")
	}
	return nil
}
