// Package memengine is an in-process mapping engine. It renders nothing, but
// honors every contract of the capability interface: basemap validation,
// surface binding, asynchronous readiness, layer views with temporal
// metadata, widget option validation and docking.
//
// It backs the --engine=memory mode of the CLI and is the engine the test
// suites run sessions against. Failure injection options make every failure
// path of a session reachable.
package memengine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
	"github.com/specialistvlad/geoview/internal/registry"
)

// DefaultBasemaps are the basemap identifiers the engine recognizes unless
// WithBasemaps replaces them.
var DefaultBasemaps = []string{
	"streets", "satellite", "hybrid", "terrain", "topo", "topographic",
	"gray", "dark-gray", "oceans", "national-geographic", "osm",
}

// TimeInfoFunc decides the temporal metadata of a layer.
type TimeInfoFunc func(props mapengine.LayerProperties) (mapengine.TimeInfo, bool)

// Engine is one simulated engine instance. Register it into a registry to
// make its capabilities resolvable.
type Engine struct {
	basemaps       map[string]struct{}
	apiKey         string
	resolveDelay   time.Duration
	resolveErrors  map[mapengine.Name]error
	readyDelay     time.Duration
	readyErr       error
	layerViewDelay time.Duration
	noLayerView    map[string]struct{}
	timeInfo       TimeInfoFunc
	widgetErrors   map[mapengine.Name]error
	widgetHook     func(mapengine.Name)

	mu       sync.Mutex
	resolved map[mapengine.Name]int
	views    []*View
	widgets  int
	nextID   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithBasemaps replaces the recognized basemaps.
func WithBasemaps(ids ...string) Option {
	return func(e *Engine) {
		e.basemaps = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			e.basemaps[id] = struct{}{}
		}
	}
}

// WithAPIKey records the engine API key the host configured.
func WithAPIKey(key string) Option {
	return func(e *Engine) { e.apiKey = key }
}

// WithResolveDelay makes every capability resolution take d.
func WithResolveDelay(d time.Duration) Option {
	return func(e *Engine) { e.resolveDelay = d }
}

// WithResolveError makes resolving name fail with err, as when fetching the
// engine module over the network fails.
func WithResolveError(name mapengine.Name, err error) Option {
	return func(e *Engine) { e.resolveErrors[name] = err }
}

// WithReadyDelay sets how long after construction views report ready.
func WithReadyDelay(d time.Duration) Option {
	return func(e *Engine) { e.readyDelay = d }
}

// WithReadyError makes views fail instead of becoming ready.
func WithReadyError(err error) Option {
	return func(e *Engine) { e.readyErr = err }
}

// WithLayerViewDelay sets how long layer views take to become available.
func WithLayerViewDelay(d time.Duration) Option {
	return func(e *Engine) { e.layerViewDelay = d }
}

// WithoutLayerView makes the layer's view never become available.
func WithoutLayerView(layerID string) Option {
	return func(e *Engine) { e.noLayerView[layerID] = struct{}{} }
}

// WithTimeInfo sets the temporal metadata source for layers.
func WithTimeInfo(fn TimeInfoFunc) Option {
	return func(e *Engine) { e.timeInfo = fn }
}

// WithLayerTimeInfo gives one layer fixed temporal metadata.
func WithLayerTimeInfo(layerID string, info mapengine.TimeInfo) Option {
	return func(e *Engine) {
		prev := e.timeInfo
		e.timeInfo = func(props mapengine.LayerProperties) (mapengine.TimeInfo, bool) {
			if props.ID == layerID {
				return info, true
			}
			if prev != nil {
				return prev(props)
			}
			return mapengine.TimeInfo{}, false
		}
	}
}

// WithWidgetError makes constructing widgets of name fail with err.
func WithWidgetError(name mapengine.Name, err error) Option {
	return func(e *Engine) { e.widgetErrors[name] = err }
}

// WithWidgetHook calls fn before every widget construction, as a host
// callback firing in the middle of wiring would.
func WithWidgetHook(fn func(name mapengine.Name)) Option {
	return func(e *Engine) { e.widgetHook = fn }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		resolveErrors: make(map[mapengine.Name]error),
		noLayerView:   make(map[string]struct{}),
		widgetErrors:  make(map[mapengine.Name]error),
		resolved:      make(map[mapengine.Name]int),
	}
	WithBasemaps(DefaultBasemaps...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register registers a provider for every capability name.
func (e *Engine) Register(r *registry.Registry) {
	for _, name := range mapengine.AllNames {
		r.RegisterProvider(name, e.provider(name))
	}
}

func (e *Engine) provider(name mapengine.Name) registry.Provider {
	return func(ctx context.Context) (mapengine.Capability, error) {
		if e.resolveDelay > 0 {
			select {
			case <-time.After(e.resolveDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err, ok := e.resolveErrors[name]; ok {
			return nil, err
		}

		e.mu.Lock()
		e.resolved[name]++
		e.mu.Unlock()

		return e.capability(name), nil
	}
}

func (e *Engine) capability(name mapengine.Name) mapengine.Capability {
	switch name {
	case mapengine.NameMap:
		return &mapConstructor{engine: e}
	case mapengine.NameMapView:
		return &viewConstructor{engine: e}
	case mapengine.NameFeatureLayer:
		return &layerConstructor{engine: e, name: name, kind: model.LayerFeature}
	case mapengine.NameImageryLayer:
		return &layerConstructor{engine: e, name: name, kind: model.LayerImageService}
	case mapengine.NameWMSLayer:
		return &layerConstructor{engine: e, name: name, kind: model.LayerWebMapService}
	default:
		return &widgetConstructor{engine: e, name: name}
	}
}

// ResolveCount returns how often a capability was resolved.
func (e *Engine) ResolveCount(name mapengine.Name) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolved[name]
}

// WidgetCount returns how many widgets were constructed.
func (e *Engine) WidgetCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.widgets
}

// APIKey returns the configured engine API key.
func (e *Engine) APIKey() string {
	return e.apiKey
}

// Views returns every view constructed so far, oldest first.
func (e *Engine) Views() []*View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*View(nil), e.views...)
}

// LastView returns the most recently constructed view, or nil.
func (e *Engine) LastView() *View {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.views) == 0 {
		return nil
	}
	return e.views[len(e.views)-1]
}

func (e *Engine) id(prefix string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	return prefix + "-" + strconv.Itoa(e.nextID)
}

func (e *Engine) basemapKnown(id string) bool {
	_, ok := e.basemaps[id]
	return ok
}

// Surface returns a newly mounted surface with the given ID.
func (e *Engine) Surface(id string) mapengine.Surface {
	return NewSurface(id)
}
