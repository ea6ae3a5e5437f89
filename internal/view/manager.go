// Package view owns view handles and the surfaces they are bound to.
//
// A Manager keeps a binding table keyed by surface ID. Binding a second view
// to a surface that is still held fails with a ViewBindError until the first
// handle is released. Sessions that share a Manager therefore cannot fight
// over one rendering surface.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
)

var (
	ErrNilSurface        = errors.New("no rendering surface")
	ErrSurfaceNotMounted = errors.New("rendering surface is not mounted")
	ErrSurfaceBound      = errors.New("rendering surface already has a view")
)

// ViewBindError reports a view that could not be bound.
type ViewBindError struct {
	Surface string
	Cause   error
}

func (e *ViewBindError) Error() string {
	if e.Surface == "" {
		return fmt.Sprintf("failed to bind view: %v", e.Cause)
	}
	return fmt.Sprintf("failed to bind view to surface '%s': %v", e.Surface, e.Cause)
}

func (e *ViewBindError) Unwrap() error { return e.Cause }

// Manager tracks which surfaces have a live view.
type Manager struct {
	mu    sync.Mutex
	bound map[string]*Handle
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{bound: make(map[string]*Handle)}
}

// Bind constructs a view on props.Surface through the set's view capability.
func (m *Manager) Bind(ctx context.Context, set *capability.Set, props mapengine.ViewProperties) (*Handle, error) {
	logger := ctxlog.FromContext(ctx)

	if props.Surface == nil {
		return nil, &ViewBindError{Cause: ErrNilSurface}
	}
	surfaceID := props.Surface.SurfaceID()
	if !props.Surface.Mounted() {
		return nil, &ViewBindError{Surface: surfaceID, Cause: ErrSurfaceNotMounted}
	}

	ctor, err := set.View()
	if err != nil {
		return nil, &ViewBindError{Surface: surfaceID, Cause: err}
	}

	// Reserve the slot before constructing so two concurrent binds cannot
	// both reach the engine.
	h := &Handle{manager: m, surface: surfaceID}
	m.mu.Lock()
	if _, taken := m.bound[surfaceID]; taken {
		m.mu.Unlock()
		return nil, &ViewBindError{Surface: surfaceID, Cause: ErrSurfaceBound}
	}
	m.bound[surfaceID] = h
	m.mu.Unlock()

	v, err := ctor.NewView(ctx, props)
	if err != nil {
		m.unbind(surfaceID, h)
		return nil, &ViewBindError{Surface: surfaceID, Cause: err}
	}
	h.view = v

	logger.Debug("View bound to surface.", "surface", surfaceID, "center", props.Center.String(), "zoom", props.Zoom)
	return h, nil
}

// Bound reports whether a surface currently has a view.
func (m *Manager) Bound(surfaceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.bound[surfaceID]
	return ok
}

func (m *Manager) unbind(surfaceID string, h *Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bound[surfaceID] == h {
		delete(m.bound, surfaceID)
	}
}

// Handle is the exclusive owner of one bound view.
type Handle struct {
	manager *Manager
	surface string
	view    mapengine.View

	once     sync.Once
	mu       sync.Mutex
	released bool
}

// View returns the engine view.
func (h *Handle) View() mapengine.View {
	return h.view
}

// Surface returns the ID of the surface the view is bound to.
func (h *Handle) Surface() string {
	return h.surface
}

// WhenReady waits for the view's ready signal.
func (h *Handle) WhenReady(ctx context.Context) error {
	return h.view.WhenReady(ctx)
}

// Release detaches the view from its surface and frees the surface for a new
// binding. It is safe to call more than once.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.view.Detach()
		h.manager.unbind(h.surface, h)
		h.mu.Lock()
		h.released = true
		h.mu.Unlock()
	})
}

// Released reports whether Release has run.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}
