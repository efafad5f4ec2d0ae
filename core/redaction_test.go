package core

import "testing"

func TestRedactHeaders(t *testing.T) {
	headers := map[string]string{
		"Authorization": "Bearer secret-token",
		"X-API-VERSION": "4.0.0",
		"Content-Type":  "application/json",
	}
	redacted := RedactHeaders(headers)
	if redacted["Authorization"] != RedactedValue {
		t.Fatalf("expected authorization to be redacted, got %q", redacted["Authorization"])
	}
	if redacted["X-API-VERSION"] != "4.0.0" {
		t.Fatalf("expected version header untouched, got %q", redacted["X-API-VERSION"])
	}
	if headers["Authorization"] != "Bearer secret-token" {
		t.Fatal("redaction must not mutate the input")
	}
}

func TestRedactSensitiveMap(t *testing.T) {
	meta := map[string]any{
		"access_token": "secret",
		"provider_id":  "clio",
		"user_id":      "user-1",
		"nested": map[string]any{
			"refresh_token": "secret",
			"page":          2,
		},
		"items": []any{
			map[string]any{"api_key": "secret", "name": "ok"},
		},
	}
	redacted := RedactSensitiveMap(meta)
	if redacted["access_token"] != RedactedValue {
		t.Fatal("expected access_token redacted")
	}
	if redacted["provider_id"] != "clio" || redacted["user_id"] != "user-1" {
		t.Fatal("traceability keys must survive redaction")
	}
	nested := redacted["nested"].(map[string]any)
	if nested["refresh_token"] != RedactedValue || nested["page"] != 2 {
		t.Fatalf("unexpected nested redaction: %+v", nested)
	}
	item := redacted["items"].([]any)[0].(map[string]any)
	if item["api_key"] != RedactedValue || item["name"] != "ok" {
		t.Fatalf("unexpected slice redaction: %+v", item)
	}
}

func TestBearerTokenSigner(t *testing.T) {
	req := &TransportRequest{Method: "GET", URL: "https://app.example.com/api/v4/contacts.json"}
	err := BearerTokenSigner{}.Sign(t.Context(), req, ActiveToken{
		TokenType:   "bearer",
		AccessToken: "token-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Headers["Authorization"] != "Bearer token-123" {
		t.Fatalf("unexpected header: %q", req.Headers["Authorization"])
	}

	if err := (BearerTokenSigner{}).Sign(t.Context(), req, ActiveToken{}); err == nil {
		t.Fatal("expected error for empty access token")
	}
	if err := (BearerTokenSigner{}).Sign(t.Context(), nil, ActiveToken{AccessToken: "x"}); err == nil {
		t.Fatal("expected error for nil request")
	}
}
