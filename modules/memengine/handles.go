package memengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
)

var (
	ErrDetached      = errors.New("view is detached")
	ErrInvalidOption = errors.New("invalid widget option")
)

// Surface is an in-memory rendering surface.
type Surface struct {
	id      string
	mounted atomic.Bool
}

// NewSurface returns a mounted surface.
func NewSurface(id string) *Surface {
	s := &Surface{id: id}
	s.mounted.Store(true)
	return s
}

func (s *Surface) SurfaceID() string { return s.id }
func (s *Surface) Mounted() bool     { return s.mounted.Load() }

// Unmount simulates the host removing the element from the page.
func (s *Surface) Unmount() { s.mounted.Store(false) }

type mapConstructor struct{ engine *Engine }

func (c *mapConstructor) CapabilityName() mapengine.Name { return mapengine.NameMap }

func (c *mapConstructor) NewMap(basemap string, layers []mapengine.Layer) (mapengine.Map, error) {
	if !c.engine.basemapKnown(basemap) {
		return nil, fmt.Errorf("%w: %q", mapengine.ErrUnknownBasemap, basemap)
	}
	return &Map{basemap: basemap, layers: append([]mapengine.Layer(nil), layers...)}, nil
}

// Map is a composed map.
type Map struct {
	basemap string
	layers  []mapengine.Layer
}

func (m *Map) Basemap() string           { return m.basemap }
func (m *Map) Layers() []mapengine.Layer { return append([]mapengine.Layer(nil), m.layers...) }

type layerConstructor struct {
	engine *Engine
	name   mapengine.Name
	kind   model.LayerKind
}

func (c *layerConstructor) CapabilityName() mapengine.Name { return c.name }

func (c *layerConstructor) NewLayer(props mapengine.LayerProperties) mapengine.Layer {
	props.Kind = c.kind
	return &Layer{props: props, engine: c.engine}
}

// Layer is a layer handle. Temporal metadata appears once its layer view
// has been created, as a real engine only knows it after loading the
// service description.
type Layer struct {
	props  mapengine.LayerProperties
	engine *Engine

	mu     sync.Mutex
	loaded bool
}

func (l *Layer) ID() string            { return l.props.ID }
func (l *Layer) Kind() model.LayerKind { return l.props.Kind }
func (l *Layer) URL() string           { return l.props.URL }

// Properties returns the construction properties, styling included.
func (l *Layer) Properties() mapengine.LayerProperties { return l.props }

func (l *Layer) TimeInfo() (mapengine.TimeInfo, bool) {
	l.mu.Lock()
	loaded := l.loaded
	l.mu.Unlock()
	if !loaded || l.engine.timeInfo == nil {
		return mapengine.TimeInfo{}, false
	}
	return l.engine.timeInfo(l.props)
}

func (l *Layer) markLoaded() {
	l.mu.Lock()
	l.loaded = true
	l.mu.Unlock()
}

type viewConstructor struct{ engine *Engine }

func (c *viewConstructor) CapabilityName() mapengine.Name { return mapengine.NameMapView }

func (c *viewConstructor) NewView(ctx context.Context, props mapengine.ViewProperties) (mapengine.View, error) {
	s, ok := props.Surface.(*Surface)
	if !ok {
		return nil, fmt.Errorf("unsupported surface type %T", props.Surface)
	}
	if !s.Mounted() {
		return nil, fmt.Errorf("surface %q is not mounted", s.id)
	}
	if props.Map == nil {
		return nil, errors.New("view needs a map")
	}

	v := &View{
		id:      c.engine.id("view"),
		engine:  c.engine,
		surface: s,
		props:   props,
		ready:   make(chan struct{}),
		docked:  make(map[model.DockPosition][]mapengine.Widget),
	}
	v.readyTimer = time.AfterFunc(c.engine.readyDelay, v.becomeReady)

	c.engine.mu.Lock()
	c.engine.views = append(c.engine.views, v)
	c.engine.mu.Unlock()
	return v, nil
}

// View is a view handle.
type View struct {
	id         string
	engine     *Engine
	surface    *Surface
	props      mapengine.ViewProperties
	ready      chan struct{}
	readyErr   error
	readyTimer *time.Timer

	mu       sync.Mutex
	docked   map[model.DockPosition][]mapengine.Widget
	goTos    []mapengine.GoToTarget
	detached bool
}

func (v *View) becomeReady() {
	v.readyErr = v.engine.readyErr
	close(v.ready)
}

func (v *View) WhenReady(ctx context.Context) error {
	select {
	case <-v.ready:
		return v.readyErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *View) WhenLayerView(ctx context.Context, layer mapengine.Layer) (mapengine.LayerView, error) {
	found := false
	for _, l := range v.props.Map.Layers() {
		if l == layer {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("layer %q is not part of the view's map", layer.ID())
	}

	if _, never := v.engine.noLayerView[layer.ID()]; never {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	select {
	case <-time.After(v.engine.layerViewDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if v.Detached() {
		return nil, ErrDetached
	}
	if ml, ok := layer.(*Layer); ok {
		ml.markLoaded()
	}
	return layerView{layer: layer}, nil
}

func (v *View) Add(w mapengine.Widget, pos model.DockPosition) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.detached {
		return ErrDetached
	}
	v.docked[pos] = append(v.docked[pos], w)
	return nil
}

func (v *View) GoTo(ctx context.Context, target mapengine.GoToTarget) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.detached {
		return ErrDetached
	}
	v.goTos = append(v.goTos, target)
	return nil
}

func (v *View) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.detached {
		return
	}
	v.detached = true
	v.readyTimer.Stop()
}

// ID returns the engine-assigned view ID.
func (v *View) ID() string { return v.id }

// Surface returns the surface the view was constructed on.
func (v *View) Surface() *Surface { return v.surface }

// Map returns the composed map the view shows.
func (v *View) Map() mapengine.Map { return v.props.Map }

// Center returns the initial center.
func (v *View) Center() model.Point { return v.props.Center }

// Zoom returns the initial zoom level.
func (v *View) Zoom() float64 { return v.props.Zoom }

// Detached reports whether Detach ran.
func (v *View) Detached() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detached
}

// Docked returns the widgets docked at pos, in docking order.
func (v *View) Docked(pos model.DockPosition) []mapengine.Widget {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]mapengine.Widget(nil), v.docked[pos]...)
}

// DockedCount returns the number of docked widgets across positions.
func (v *View) DockedCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, ws := range v.docked {
		n += len(ws)
	}
	return n
}

// GoTos returns every navigation target the view received.
func (v *View) GoTos() []mapengine.GoToTarget {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]mapengine.GoToTarget(nil), v.goTos...)
}

type layerView struct{ layer mapengine.Layer }

func (lv layerView) Layer() mapengine.Layer { return lv.layer }
