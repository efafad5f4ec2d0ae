package core

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultAuthorizationTTL bounds how long a pending authorization request
// stays claimable.
const DefaultAuthorizationTTL = 15 * time.Minute

// MemoryAuthRequestStore keeps pending authorization requests in memory.
// Suitable for tests and single-process deployments.
type MemoryAuthRequestStore struct {
	mu      sync.Mutex
	byID    map[string]*AuthorizationRequest
	byState map[string]string
}

// NewMemoryAuthRequestStore builds an empty store.
func NewMemoryAuthRequestStore() *MemoryAuthRequestStore {
	return &MemoryAuthRequestStore{
		byID:    map[string]*AuthorizationRequest{},
		byState: map[string]string{},
	}
}

func (s *MemoryAuthRequestStore) Save(_ context.Context, req *AuthorizationRequest) error {
	if s == nil {
		return fmt.Errorf("core: auth request store is nil")
	}
	if req == nil || strings.TrimSpace(req.ID) == "" {
		return fmt.Errorf("core: authorization request id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[req.ID] = req.Clone()
	if req.State != "" {
		s.byState[req.State] = req.ID
	}
	return nil
}

func (s *MemoryAuthRequestStore) Get(_ context.Context, id string) (*AuthorizationRequest, error) {
	if s == nil {
		return nil, fmt.Errorf("core: auth request store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("core: authorization request %q not found", id)
	}
	return req.Clone(), nil
}

// ConsumeState claims the pending request bound to state. The state mapping
// is removed so a replayed callback cannot claim it twice.
func (s *MemoryAuthRequestStore) ConsumeState(_ context.Context, state string) (*AuthorizationRequest, error) {
	if s == nil {
		return nil, fmt.Errorf("core: auth request store is nil")
	}
	state = strings.TrimSpace(state)
	if state == "" {
		return nil, fmt.Errorf("core: oauth state is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byState[state]
	if !ok {
		return nil, fmt.Errorf("core: oauth state not recognized")
	}
	delete(s.byState, state)
	req, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("core: oauth state not recognized")
	}
	return req.Clone(), nil
}

func (s *MemoryAuthRequestStore) Update(_ context.Context, req *AuthorizationRequest) error {
	if s == nil {
		return fmt.Errorf("core: auth request store is nil")
	}
	if req == nil || strings.TrimSpace(req.ID) == "" {
		return fmt.Errorf("core: authorization request id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[req.ID]; !ok {
		return fmt.Errorf("core: authorization request %q not found", req.ID)
	}
	s.byID[req.ID] = req.Clone()
	return nil
}

var _ AuthRequestStore = (*MemoryAuthRequestStore)(nil)

// GenerateOAuthState returns an unguessable state parameter.
func GenerateOAuthState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("core: generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateCodeVerifier returns a PKCE code verifier per RFC 7636.
func GenerateCodeVerifier() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("core: generate code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CodeChallengeS256 derives the S256 challenge for a verifier.
func CodeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
