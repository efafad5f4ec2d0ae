// Package clio wires the Clio practice-management API as an OAuth2
// provider. Clio exposes a versioned REST API; every call must carry the
// X-API-VERSION header.
package clio

import (
	"time"

	"github.com/sznchanda/arcade-ai/core"
	"github.com/sznchanda/arcade-ai/providers"
)

const (
	ProviderID = "clio"

	BaseURL    = "https://app.clio.com/api/v4/"
	APIVersion = "4.0.0"

	defaultAuthURL   = "https://app.clio.com/oauth/authorize"
	defaultTokenURL  = "https://app.clio.com/oauth/token"
	defaultRevokeURL = "https://app.clio.com/oauth/deauthorize"

	// Clio rejects list page sizes above 200.
	MaxPageSize = 200

	defaultRequestTimeout = 30 * time.Second
)

type Config struct {
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	AuthURL        string
	TokenURL       string
	RevokeURL      string
	Scopes         []string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	HTTPClient     providers.HTTPDoer
}

type Provider struct {
	*providers.OAuth2Provider
}

// Profile returns the Clio API surface description used by the resilient
// client.
func Profile() core.ProviderProfile {
	return core.ProviderProfile{
		ID:      ProviderID,
		BaseURL: BaseURL,
		RequiredHeaders: map[string]string{
			"X-API-VERSION": APIVersion,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		Pagination:     core.PaginationOffset,
		MaxPageSize:    MaxPageSize,
		RequestTimeout: defaultRequestTimeout,
	}
}

func New(cfg Config) (core.Provider, error) {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	revokeURL := cfg.RevokeURL
	if revokeURL == "" {
		revokeURL = defaultRevokeURL
	}

	profile := Profile()
	profile.Scopes = cfg.Scopes
	if cfg.RequestTimeout > 0 {
		profile.RequestTimeout = cfg.RequestTimeout
	}

	oauthProvider, err := providers.NewOAuth2Provider(providers.OAuth2Config{
		Profile:             profile,
		AuthURL:             authURL,
		TokenURL:            tokenURL,
		RevokeURL:           revokeURL,
		ClientID:            cfg.ClientID,
		ClientSecret:        cfg.ClientSecret,
		ClientSecretInBody:  true,
		RedirectURI:         cfg.RedirectURI,
		TokenTTL:            cfg.TokenTTL,
		TokenRequestTimeout: profile.RequestTimeout,
		HTTPClient:          cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{OAuth2Provider: oauthProvider}, nil
}
