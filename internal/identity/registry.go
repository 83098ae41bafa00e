package identity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"prepwise/internal/config"
)

// Deps are the shared resources a provider may need.
type Deps struct {
	Config *config.Config
	Redis  *redis.Client
}

type ProviderFactory func(ctx context.Context, deps Deps) (Provider, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]ProviderFactory)
)

// RegisterProvider is called from provider packages' init.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

func NewProvider(ctx context.Context, name string, deps Deps) (Provider, error) {
	mu.RLock()
	factory, ok := providers[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported identity provider: %s", name)
	}
	return factory(ctx, deps)
}

func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
