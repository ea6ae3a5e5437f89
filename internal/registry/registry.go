package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
)

// ErrUnsupported is returned by Resolve for names nothing registered.
var ErrUnsupported = errors.New("unsupported capability")

// Module is the interface that all engine modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Provider produces the capability registered under one name. It may perform
// I/O, for example fetching engine code or contacting a remote host.
type Provider func(ctx context.Context) (mapengine.Capability, error)

// Registry holds the capability providers of a single application instance.
type Registry struct {
	mu        sync.RWMutex
	providers map[mapengine.Name]Provider
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		providers: make(map[mapengine.Name]Provider),
	}
}

// RegisterProvider registers the provider for a capability name.
func (r *Registry) RegisterProvider(name mapengine.Name, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		panic(fmt.Sprintf("capability provider with name '%s' already registered", name))
	}
	slog.Debug("Registering capability provider.", "name", name)
	r.providers[name] = p
}

// RegisterCapability registers a capability value that needs no loading.
func (r *Registry) RegisterCapability(c mapengine.Capability) {
	r.RegisterProvider(c.CapabilityName(), func(context.Context) (mapengine.Capability, error) {
		return c, nil
	})
}

// Resolve runs the provider registered under name.
func (r *Registry) Resolve(ctx context.Context, name mapengine.Name) (mapengine.Capability, error) {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	c, err := p(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("provider for '%s' returned no capability", name)
	}
	if c.CapabilityName() != name {
		return nil, fmt.Errorf("provider for '%s' returned capability '%s'", name, c.CapabilityName())
	}
	return c, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []mapengine.Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]mapengine.Name, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Validate checks that every required name has a provider.
func (r *Registry) Validate(ctx context.Context, required []mapengine.Name) error {
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	var missing []string
	for _, n := range required {
		if _, ok := r.providers[n]; !ok {
			missing = append(missing, string(n))
		}
	}
	r.mu.RUnlock()

	if len(missing) > 0 {
		return fmt.Errorf("registry validation failed: no provider for:\n- %s", strings.Join(missing, "\n- "))
	}
	logger.Debug("Registry validation passed.", "required", len(required))
	return nil
}
