package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderRegistry is the default in-memory Registry implementation.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewProviderRegistry builds an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: map[string]Provider{}}
}

// Register adds a provider; duplicate IDs are rejected.
func (r *ProviderRegistry) Register(provider Provider) error {
	if r == nil {
		return fmt.Errorf("core: registry is nil")
	}
	if provider == nil {
		return fmt.Errorf("core: provider is required")
	}
	id := strings.TrimSpace(provider.ID())
	if id == "" {
		return fmt.Errorf("core: provider id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("core: provider %q already registered", id)
	}
	r.providers[id] = provider
	return nil
}

// Get returns the provider registered under id.
func (r *ProviderRegistry) Get(id string) (Provider, error) {
	if r == nil {
		return nil, fmt.Errorf("core: registry is nil")
	}
	id = strings.TrimSpace(id)

	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("core: provider %q not registered", id)
	}
	return provider, nil
}

// List returns registered provider IDs sorted ascending.
func (r *ProviderRegistry) List() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var _ Registry = (*ProviderRegistry)(nil)
