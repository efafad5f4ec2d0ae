package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSONCredentialCodec serializes credentials as versioned JSON payloads so
// token stores only ever hold opaque bytes.
type JSONCredentialCodec struct{}

func (JSONCredentialCodec) Format() string { return "json" }

func (JSONCredentialCodec) Version() int { return 1 }

type jsonCredentialPayload struct {
	Format       string           `json:"format"`
	Version      int              `json:"version"`
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	ProviderID   string           `json:"provider_id"`
	Status       CredentialStatus `json:"status"`
	TokenType    string           `json:"token_type,omitempty"`
	AccessToken  string           `json:"access_token,omitempty"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	Scopes       []string         `json:"scopes,omitempty"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
}

func (c JSONCredentialCodec) Encode(credential *Credential) ([]byte, error) {
	if credential == nil {
		return nil, fmt.Errorf("core: credential is required")
	}
	payload := jsonCredentialPayload{
		Format:       c.Format(),
		Version:      c.Version(),
		ID:           credential.ID,
		UserID:       credential.UserID,
		ProviderID:   credential.ProviderID,
		Status:       credential.Status,
		TokenType:    credential.TokenType,
		AccessToken:  credential.AccessToken,
		RefreshToken: credential.RefreshToken,
		Scopes:       credential.Scopes,
		ExpiresAt:    credential.ExpiresAt,
		CreatedAt:    credential.CreatedAt,
		UpdatedAt:    credential.UpdatedAt,
		Metadata:     credential.Metadata,
	}
	return json.Marshal(payload)
}

func (c JSONCredentialCodec) Decode(data []byte) (*Credential, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("core: credential payload is empty")
	}
	var payload jsonCredentialPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("core: decode credential payload: %w", err)
	}
	if payload.Format != "" && payload.Format != c.Format() {
		return nil, fmt.Errorf("core: unsupported credential format %q", payload.Format)
	}
	if payload.Version > c.Version() {
		return nil, fmt.Errorf("core: unsupported credential payload version %d", payload.Version)
	}
	return &Credential{
		ID:           payload.ID,
		UserID:       payload.UserID,
		ProviderID:   payload.ProviderID,
		Status:       payload.Status,
		TokenType:    payload.TokenType,
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		Scopes:       payload.Scopes,
		ExpiresAt:    payload.ExpiresAt,
		CreatedAt:    payload.CreatedAt,
		UpdatedAt:    payload.UpdatedAt,
		Metadata:     payload.Metadata,
	}, nil
}

var _ CredentialCodec = (*JSONCredentialCodec)(nil)
