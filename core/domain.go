package core

import (
	"fmt"
	"time"
)

// CredentialStatus tracks the lifecycle of a stored token grant.
type CredentialStatus string

const (
	CredentialStatusActive  CredentialStatus = "active"
	CredentialStatusExpired CredentialStatus = "expired"
	CredentialStatusRevoked CredentialStatus = "revoked"
)

// AuthorizationStatus tracks the lifecycle of a pending user authorization.
type AuthorizationStatus string

const (
	AuthorizationStatusPending   AuthorizationStatus = "pending"
	AuthorizationStatusCompleted AuthorizationStatus = "completed"
	AuthorizationStatusFailed    AuthorizationStatus = "failed"
	AuthorizationStatusExpired   AuthorizationStatus = "expired"
)

// Credential is the durable record of a user's grant for one provider.
// Access and refresh tokens live only inside this record; callers receive
// an ActiveToken projection instead.
type Credential struct {
	ID           string
	UserID       string
	ProviderID   string
	Status       CredentialStatus
	TokenType    string
	AccessToken  string
	RefreshToken string
	Scopes       []string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Metadata     map[string]any
}

// Refreshable reports whether the credential carries a refresh token.
func (c *Credential) Refreshable() bool {
	return c != nil && c.RefreshToken != ""
}

// TransitionTo moves the credential into next when the transition is allowed.
func (c *Credential) TransitionTo(next CredentialStatus, now time.Time) error {
	if c == nil {
		return fmt.Errorf("core: credential is nil")
	}
	if c.Status == next {
		return nil
	}
	if !credentialTransitionAllowed(c.Status, next) {
		return fmt.Errorf("core: invalid credential transition %s -> %s", c.Status, next)
	}
	c.Status = next
	c.UpdatedAt = now
	return nil
}

func credentialTransitionAllowed(current, next CredentialStatus) bool {
	allowed := map[CredentialStatus]map[CredentialStatus]bool{
		CredentialStatusActive: {
			CredentialStatusExpired: true,
			CredentialStatusRevoked: true,
		},
		CredentialStatusExpired: {
			CredentialStatusActive: true,
			CredentialStatusRevoked: true,
		},
		CredentialStatusRevoked: {},
	}
	return allowed[current][next]
}

// Clone returns a deep copy so callers can mutate without racing the store.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	dup := *c
	dup.Scopes = cloneStrings(c.Scopes)
	dup.ExpiresAt = cloneTimePointer(c.ExpiresAt)
	dup.Metadata = cloneMetadata(c.Metadata)
	return &dup
}

// AuthorizationRequest is one pending (or settled) user authorization
// round-trip. State and CodeVerifier never leave the broker.
type AuthorizationRequest struct {
	ID            string
	UserID        string
	ProviderID    string
	Status        AuthorizationStatus
	AuthorizeURL  string
	State         string
	CodeVerifier  string
	Scopes        []string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     time.Time
}

// Settled reports whether the request reached a terminal status.
func (r *AuthorizationRequest) Settled() bool {
	if r == nil {
		return false
	}
	switch r.Status {
	case AuthorizationStatusCompleted, AuthorizationStatusFailed, AuthorizationStatusExpired:
		return true
	}
	return false
}

// TransitionTo moves the request into next when the transition is allowed.
func (r *AuthorizationRequest) TransitionTo(next AuthorizationStatus, now time.Time) error {
	if r == nil {
		return fmt.Errorf("core: authorization request is nil")
	}
	if r.Status == next {
		return nil
	}
	if !authorizationTransitionAllowed(r.Status, next) {
		return fmt.Errorf("core: invalid authorization transition %s -> %s", r.Status, next)
	}
	r.Status = next
	r.UpdatedAt = now
	return nil
}

func authorizationTransitionAllowed(current, next AuthorizationStatus) bool {
	allowed := map[AuthorizationStatus]map[AuthorizationStatus]bool{
		AuthorizationStatusPending: {
			AuthorizationStatusCompleted: true,
			AuthorizationStatusFailed:    true,
			AuthorizationStatusExpired:   true,
		},
		AuthorizationStatusCompleted: {},
		AuthorizationStatusFailed:    {},
		AuthorizationStatusExpired:   {},
	}
	return allowed[current][next]
}

// Clone returns a deep copy of the request.
func (r *AuthorizationRequest) Clone() *AuthorizationRequest {
	if r == nil {
		return nil
	}
	dup := *r
	dup.Scopes = cloneStrings(r.Scopes)
	return &dup
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	dup := make([]string, len(values))
	copy(dup, values)
	return dup
}

func cloneTimePointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	dup := *value
	return &dup
}

func cloneMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	dup := make(map[string]any, len(meta))
	for key, value := range meta {
		dup[key] = value
	}
	return dup
}
