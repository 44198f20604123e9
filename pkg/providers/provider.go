package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
)

// Source is a configured content source. Fetch never fails: every error is
// already folded into the returned result.
type Source interface {
	Fetch(ctx context.Context) feedtypes.FetchResult
	Metadata() SourceMetadata
}

// SourceMetadata describes a configured source.
type SourceMetadata struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Location   string `json:"location,omitempty"`
	Configured bool   `json:"configured"`
}

// ProviderFactory creates a new source from a provider specific config.
type ProviderFactory func(config any) (Source, error)

// ProviderInfo contains metadata about a provider.
type ProviderInfo struct {
	Name        string
	Description string
	Factory     ProviderFactory
}

// ProviderRegistry manages registered source providers.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]*ProviderInfo
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]*ProviderInfo),
	}
}

// Register adds a provider to the registry.
func (r *ProviderRegistry) Register(name string, info *ProviderInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s is already registered", name)
	}

	r.providers[name] = info
	return nil
}

// Get retrieves a provider by name.
func (r *ProviderRegistry) Get(name string) (*ProviderInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return info, nil
}

// List returns all registered provider names in sorted order.
func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// CreateProvider creates a new source of the specified provider.
func (r *ProviderRegistry) CreateProvider(name string, config any) (Source, error) {
	info, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return info.Factory(config)
}

// Global registry instance
var DefaultRegistry = NewProviderRegistry()
