// Package capability resolves named mapping-engine capabilities for a
// session.
//
// Loading is all-or-nothing per call: either every requested capability is
// bound into the returned Set, or the call fails with a CapabilityLoadError
// and no Set. Successfully resolved capabilities are cached by the Loader and
// shared by every later call, so many sessions can load through one Loader
// without resolving twice. Failures are not cached and never retried by the
// loader itself.
package capability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
)

// Resolver produces a capability by name. *registry.Registry implements it.
type Resolver interface {
	Resolve(ctx context.Context, name mapengine.Name) (mapengine.Capability, error)
}

// CapabilityLoadError reports that a Load call could not bind its set.
type CapabilityLoadError struct {
	// Requested lists every name of the failed call.
	Requested []mapengine.Name
	// Name is the capability that failed.
	Name  mapengine.Name
	Cause error
}

func (e *CapabilityLoadError) Error() string {
	return fmt.Sprintf("failed to load capability '%s': %v", e.Name, e.Cause)
}

func (e *CapabilityLoadError) Unwrap() error { return e.Cause }

// entry is one cached or in-flight resolution.
type entry struct {
	done chan struct{}
	cap  mapengine.Capability
	err  error
}

// Loader resolves capabilities through a Resolver and caches the results.
type Loader struct {
	resolver Resolver
	timeout  time.Duration

	mu      sync.Mutex
	entries map[mapengine.Name]*entry
}

// Option configures a Loader.
type Option func(*Loader)

// WithResolveTimeout bounds a single background resolution. Zero disables
// the bound.
func WithResolveTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// NewLoader creates a Loader with its own cache.
func NewLoader(r Resolver, opts ...Option) *Loader {
	l := &Loader{
		resolver: r,
		timeout:  30 * time.Second,
		entries:  make(map[mapengine.Name]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	sharedMu      sync.Mutex
	sharedLoaders = make(map[Resolver]*Loader)
)

// Shared returns the process-wide Loader for a resolver, creating it on first
// use. The resolver must be a comparable value such as a pointer. opts apply
// only when the Loader is created.
func Shared(r Resolver, opts ...Option) *Loader {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	l, ok := sharedLoaders[r]
	if !ok {
		l = NewLoader(r, opts...)
		sharedLoaders[r] = l
	}
	return l
}

// Load binds every named capability into a Set.
//
// A cancelled ctx makes Load return early with a CapabilityLoadError wrapping
// ctx.Err(); resolutions already in flight keep running and populate the
// cache for later callers.
func (l *Loader) Load(ctx context.Context, names ...mapengine.Name) (*Set, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading capabilities.", "names", names)

	pending := make([]*entry, len(names))
	for i, name := range names {
		pending[i] = l.acquire(ctx, name)
	}

	set := &Set{caps: make(map[mapengine.Name]mapengine.Capability, len(names))}
	for i, e := range pending {
		select {
		case <-e.done:
		case <-ctx.Done():
			return nil, &CapabilityLoadError{Requested: names, Name: names[i], Cause: ctx.Err()}
		}
		if e.err != nil {
			logger.Debug("Capability failed to resolve.", "name", names[i], "error", e.err)
			return nil, &CapabilityLoadError{Requested: names, Name: names[i], Cause: e.err}
		}
		set.caps[names[i]] = e.cap
	}

	logger.Debug("Capabilities loaded.", "count", len(set.caps))
	return set, nil
}

// Cached reports whether a capability is resolved and held in the cache.
func (l *Loader) Cached(name mapengine.Name) bool {
	l.mu.Lock()
	e, ok := l.entries[name]
	l.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-e.done:
		return e.err == nil
	default:
		return false
	}
}

// acquire returns the cache entry for name, starting a resolution if there
// is none.
func (l *Loader) acquire(ctx context.Context, name mapengine.Name) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[name]; ok {
		return e
	}

	e := &entry{done: make(chan struct{})}
	l.entries[name] = e

	resolveCtx := context.WithoutCancel(ctx)
	go l.resolve(resolveCtx, name, e)
	return e
}

func (l *Loader) resolve(ctx context.Context, name mapengine.Name, e *entry) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	c, err := l.call(ctx, name)
	if err == nil && c == nil {
		err = fmt.Errorf("resolver returned no capability for '%s'", name)
	}

	l.mu.Lock()
	e.cap, e.err = c, err
	if err != nil && l.entries[name] == e {
		delete(l.entries, name)
	}
	l.mu.Unlock()
	close(e.done)
}

// call runs the resolver, turning a panic into an error.
func (l *Loader) call(ctx context.Context, name mapengine.Name) (c mapengine.Capability, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("resolving '%s' panicked: %v", name, r)
		}
	}()
	return l.resolver.Resolve(ctx, name)
}
