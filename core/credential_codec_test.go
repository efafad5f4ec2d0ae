package core

import (
	"testing"
	"time"
)

func TestJSONCredentialCodecRoundTrip(t *testing.T) {
	codec := JSONCredentialCodec{}
	expires := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	original := &Credential{
		ID:           "cred-1",
		UserID:       "user-1",
		ProviderID:   "clio",
		Status:       CredentialStatusActive,
		TokenType:    "bearer",
		AccessToken:  "access",
		RefreshToken: "refresh",
		Scopes:       []string{"read", "write"},
		ExpiresAt:    &expires,
		CreatedAt:    expires.Add(-time.Hour),
		UpdatedAt:    expires.Add(-time.Hour),
	}

	payload, err := codec.Encode(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := codec.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.AccessToken != original.AccessToken || decoded.RefreshToken != original.RefreshToken {
		t.Fatalf("token fields lost: %+v", decoded)
	}
	if decoded.Status != CredentialStatusActive || len(decoded.Scopes) != 2 {
		t.Fatalf("unexpected decode result: %+v", decoded)
	}
	if decoded.ExpiresAt == nil || !decoded.ExpiresAt.Equal(expires) {
		t.Fatalf("expiry lost: %v", decoded.ExpiresAt)
	}
}

func TestJSONCredentialCodecRejectsBadPayloads(t *testing.T) {
	codec := JSONCredentialCodec{}
	if _, err := codec.Encode(nil); err == nil {
		t.Fatal("expected error for nil credential")
	}
	if _, err := codec.Decode(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := codec.Decode([]byte("not-json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := codec.Decode([]byte(`{"format":"protobuf"}`)); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := codec.Decode([]byte(`{"format":"json","version":99}`)); err == nil {
		t.Fatal("expected error for future version")
	}
}
