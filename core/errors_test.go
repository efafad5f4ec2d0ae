package core

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestAuthorizationRequiredError(t *testing.T) {
	err := NewAuthorizationRequiredError("user-1", "clio", "https://app.example.com/oauth/authorize")
	if !IsAuthorizationRequired(err) {
		t.Fatal("expected authorization-required signal")
	}
	url, ok := AuthorizationRequiredURL(err)
	if !ok || url != "https://app.example.com/oauth/authorize" {
		t.Fatalf("expected url extraction, got %q ok=%t", url, ok)
	}

	// Detection must survive wrapping.
	wrapped := fmt.Errorf("dispatch: %w", err)
	if !IsAuthorizationRequired(wrapped) {
		t.Fatal("expected detection through wrapping")
	}
	if IsAuthorizationRequired(errors.New("plain")) {
		t.Fatal("plain errors must not match")
	}
	if _, ok := AuthorizationRequiredURL(errors.New("plain")); ok {
		t.Fatal("plain errors carry no url")
	}
}

func TestAuthorizationTimeoutError(t *testing.T) {
	err := NewAuthorizationTimeoutError("req-1")
	if !IsAuthorizationTimeout(err) {
		t.Fatal("expected timeout signal")
	}
	if IsAuthorizationTimeout(NewAuthorizationRequiredError("u", "p", "url")) {
		t.Fatal("authorization-required must not match timeout")
	}
}

func TestRefreshFailedError(t *testing.T) {
	cause := goerrors.New("upstream unavailable", goerrors.CategoryExternal)
	err := NewRefreshFailedError(cause, "user-1", "clio")
	if !IsRefreshFailed(err) {
		t.Fatal("expected refresh-failed signal")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatal("expected rich error")
	}
	if richErr.Category != goerrors.CategoryAuth {
		t.Fatalf("expected auth category, got %s", richErr.Category)
	}
}

func TestRuntimeErrorMapperKeepsAuthorizationSignalExclusive(t *testing.T) {
	rejected := runtimeErrorMapper(goerrors.New("provider rejected credentials", goerrors.CategoryAuth))
	if rejected.TextCode != RuntimeErrorAuthenticationFailed {
		t.Fatalf("expected authentication-failed code, got %s", rejected.TextCode)
	}
	if IsAuthorizationRequired(rejected) {
		t.Fatal("plain auth failures must not carry the re-authorization signal")
	}

	denied := runtimeErrorMapper(goerrors.New("provider denied permission", goerrors.CategoryAuthz))
	if denied.TextCode != RuntimeErrorPermissionDenied {
		t.Fatalf("expected permission-denied code, got %s", denied.TextCode)
	}
	if IsAuthorizationRequired(denied) {
		t.Fatal("permission denials must not carry the re-authorization signal")
	}
}

func TestRuntimeErrorMapperAssignsEnvelope(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		textCode string
	}{
		{name: "provider_not_registered", err: errors.New("core: provider \"x\" not registered"), textCode: RuntimeErrorProviderNotFound},
		{name: "oauth_state", err: errors.New("core: oauth state not recognized"), textCode: RuntimeErrorStateInvalid},
		{name: "version_conflict", err: errors.New("credential version conflict"), textCode: RuntimeErrorVersionConflict},
		{name: "rate_limited", err: errors.New("request throttled by provider"), textCode: RuntimeErrorRateLimited},
		{name: "bad_input", err: errors.New("user id is required"), textCode: RuntimeErrorBadInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := runtimeErrorMapper(tc.err)
			if mapped == nil {
				t.Fatal("expected mapped error")
			}
			if mapped.TextCode != tc.textCode {
				t.Fatalf("expected %s, got %s", tc.textCode, mapped.TextCode)
			}
			if mapped.Code == 0 {
				t.Fatal("expected an http status on the envelope")
			}
		})
	}
}
