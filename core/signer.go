package core

import (
	"context"
	"fmt"
	"strings"
)

// BearerTokenSigner sets the Authorization header from an active token.
type BearerTokenSigner struct{}

// Sign attaches the bearer token. The access token value itself is never
// logged; callers log headers through RedactHeaders.
func (BearerTokenSigner) Sign(_ context.Context, req *TransportRequest, token ActiveToken) error {
	if req == nil {
		return fmt.Errorf("core: transport request is required")
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return fmt.Errorf("core: access token is required")
	}
	tokenType := strings.TrimSpace(token.TokenType)
	if tokenType == "" {
		tokenType = "Bearer"
	} else {
		tokenType = strings.ToUpper(tokenType[:1]) + tokenType[1:]
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers["Authorization"] = tokenType + " " + token.AccessToken
	return nil
}

var _ Signer = (*BearerTokenSigner)(nil)
