package provider

import (
	"context"
	"fmt"
	"sync"
)

// Factory is a function type that creates a Provider from a profile path
type Factory func(ctx context.Context, profilePath string) (Provider, error)

// Registry manages named provider factories
type Registry interface {
	// Register adds a new provider factory
	Register(name string, factory Factory) error
	// Create instantiates a provider by name using the provided profile
	Create(ctx context.Context, name, profilePath string) (Provider, error)
	// ListProviders returns a list of registered provider names
	ListProviders() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new provider registry
func NewRegistry(factories map[string]Factory) Registry {
	r := &registry{
		factories: make(map[string]Factory),
	}
	for name, factory := range factories {
		r.factories[name] = factory
	}
	return r
}

func (r *registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("provider %q is already registered", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, name, profilePath string) (Provider, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("provider %q is not registered", name)
	}

	return factory(ctx, profilePath)
}

func (r *registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
