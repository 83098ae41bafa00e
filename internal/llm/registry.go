package llm

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderFactory builds a provider from its own environment settings.
type ProviderFactory func() (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]ProviderFactory)
)

// RegisterProvider is called from provider packages' init functions.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

func NewProvider(name string) (Provider, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported AI provider %q (registered: %v)", name, Registered())
	}

	provider, err := factory()
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", name, err)
	}
	return provider, nil
}

// Registered lists provider names in sorted order.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
