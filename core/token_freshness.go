package core

import "time"

// DefaultTokenSafetyMargin is subtracted from a token's expiry when deciding
// whether it is still safe to hand out. A token inside the margin is treated
// as expired so in-flight requests do not race the real expiry.
const DefaultTokenSafetyMargin = 60 * time.Second

// TokenState classifies a credential's usability at a point in time.
type TokenState string

const (
	TokenStateMissing TokenState = "missing"
	TokenStateValid   TokenState = "valid"
	TokenStateExpired TokenState = "expired"
	TokenStateRevoked TokenState = "revoked"
)

// ResolveTokenState classifies credential at now using the safety margin.
// Credentials without an expiry are treated as valid until revoked.
func ResolveTokenState(now time.Time, credential *Credential, margin time.Duration) TokenState {
	if credential == nil || credential.AccessToken == "" {
		return TokenStateMissing
	}
	if credential.Status == CredentialStatusRevoked {
		return TokenStateRevoked
	}
	if margin < 0 {
		margin = DefaultTokenSafetyMargin
	}
	if credential.Status == CredentialStatusExpired {
		return TokenStateExpired
	}
	if credential.ExpiresAt == nil {
		return TokenStateValid
	}
	if !now.Before(credential.ExpiresAt.Add(-margin)) {
		return TokenStateExpired
	}
	return TokenStateValid
}

// ShouldRefreshToken reports whether the broker must refresh before handing
// the token out.
func ShouldRefreshToken(state TokenState, credential *Credential) bool {
	if state != TokenStateExpired {
		return false
	}
	return credential.Refreshable()
}
