package validation

import "testing"

func TestValidatePersonName(t *testing.T) {
	cases := []struct {
		name        string
		contactType string
		first       string
		last        string
		company     string
		wantErr     bool
	}{
		{name: "person_with_first_name", contactType: "Person", first: "Ada"},
		{name: "person_with_last_name", contactType: "Person", last: "Lovelace"},
		{name: "person_without_names", contactType: "Person", company: "Acme", wantErr: true},
		{name: "person_whitespace_names", contactType: "Person", first: "  ", last: "\t", wantErr: true},
		{name: "company_with_name", contactType: "Company", company: "Acme LLP"},
		{name: "company_without_name", contactType: "Company", first: "Ada", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePersonName(tc.contactType, tc.first, tc.last, tc.company)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateMatterClose(t *testing.T) {
	if err := ValidateMatterClose("Closed", ""); err == nil {
		t.Fatal("expected error closing a matter without a close date")
	}
	if err := ValidateMatterClose("Closed", "2024-06-15"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateMatterClose("Open", ""); err != nil {
		t.Fatalf("unexpected error for open matter: %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	if _, err := ValidateEmail("primary_email_address", "ada@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, raw := range []string{"", "not-an-email", "a@b", "two@@example.com"} {
		if _, err := ValidateEmail("primary_email_address", raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	got, err := ValidatePhone("primary_phone_number", "(415) 555-0142")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "(415) 555-0142" {
		t.Fatalf("expected formatting preserved, got %q", got)
	}
	if _, err := ValidatePhone("primary_phone_number", "555-0142"); err == nil {
		t.Fatal("expected error for too few digits")
	}
}
