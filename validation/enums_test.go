package validation

import "testing"

func TestNormalizeContactType(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "person", want: "Person"},
		{raw: "PERSON", want: "Person"},
		{raw: "Individual", want: "Person"},
		{raw: "company", want: "Company"},
		{raw: "Organization", want: "Company"},
		{raw: "business", want: "Company"},
		{raw: " person ", want: "Person"},
		{raw: "robot", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := NormalizeContactType(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q, got %q", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q for %q, got %q", tc.want, tc.raw, got)
		}
	}
}

func TestNormalizeMatterStatus(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "open", want: "Open"},
		{raw: "OPEN", want: "Open"},
		{raw: "Closed", want: "Closed"},
		{raw: "pending", want: "Pending"},
		{raw: "archived", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := NormalizeMatterStatus(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q, got %q", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q for %q, got %q", tc.want, tc.raw, got)
		}
	}
}

func TestNormalizeActivityType(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "time", want: "TimeEntry"},
		{raw: "Time_Entry", want: "TimeEntry"},
		{raw: "timeentry", want: "TimeEntry"},
		{raw: "expense", want: "ExpenseEntry"},
		{raw: "EXPENSE_ENTRY", want: "ExpenseEntry"},
		{raw: "mileage", wantErr: true},
	}

	for _, tc := range cases {
		got, err := NormalizeActivityType(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q, got %q", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q for %q, got %q", tc.want, tc.raw, got)
		}
	}
}
