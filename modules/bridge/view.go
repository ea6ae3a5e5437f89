package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
)

// ErrDetached is returned by operations on a detached view.
var ErrDetached = errors.New("view is detached")

// detachTimeout bounds the synchronous view.destroy request.
const detachTimeout = 5 * time.Second

type viewConstructor struct{ client *Client }

func (c *viewConstructor) CapabilityName() mapengine.Name { return mapengine.NameMapView }

func (c *viewConstructor) NewView(ctx context.Context, props mapengine.ViewProperties) (mapengine.View, error) {
	m, ok := props.Map.(*Map)
	if !ok {
		return nil, fmt.Errorf("map %T was not composed by the bridge engine", props.Map)
	}
	res, err := c.client.Call(ctx, "view.create", map[string]any{
		"surface": props.Surface.SurfaceID(),
		"center":  []any{props.Center.Longitude, props.Center.Latitude},
		"zoom":    props.Zoom,
		"map":     m.id,
	})
	if err != nil {
		return nil, err
	}
	id, _ := res["id"].(string)
	if id == "" {
		return nil, errors.New("remote view.create returned no view id")
	}
	return &View{id: id, client: c.client, m: m}, nil
}

// View is the local proxy of a remote view.
type View struct {
	id     string
	client *Client
	m      *Map

	mu        sync.Mutex
	detached  bool
	callbacks []string
}

// ID returns the remote view ID.
func (v *View) ID() string { return v.id }

func (v *View) isDetached() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detached
}

func (v *View) WhenReady(ctx context.Context) error {
	_, err := v.client.Await(ctx, "view.whenReady", map[string]any{"view": v.id})
	return err
}

func (v *View) WhenLayerView(ctx context.Context, layer mapengine.Layer) (mapengine.LayerView, error) {
	rl, ok := layer.(*Layer)
	if !ok {
		return nil, fmt.Errorf("layer %q was not built by the bridge engine", layer.ID())
	}
	res, err := v.client.Await(ctx, "view.whenLayerView", map[string]any{"view": v.id, "layer": rl.ID()})
	if err != nil {
		return nil, err
	}
	if v.isDetached() {
		return nil, ErrDetached
	}
	if info, ok := parseTimeInfo(mapField(res, "time_info")); ok {
		rl.setTimeInfo(info)
	}
	return layerView{layer: rl}, nil
}

func (v *View) Add(w mapengine.Widget, pos model.DockPosition) error {
	if v.isDetached() {
		return ErrDetached
	}
	_, err := v.client.Call(context.Background(), "view.add", map[string]any{
		"view":     v.id,
		"widget":   w.WidgetID(),
		"position": string(pos),
	})
	return err
}

func (v *View) GoTo(ctx context.Context, target mapengine.GoToTarget) error {
	if v.isDetached() {
		return ErrDetached
	}
	_, err := v.client.Call(ctx, "view.goTo", goToPayload(v.id, target))
	return err
}

func (v *View) Detach() {
	v.mu.Lock()
	if v.detached {
		v.mu.Unlock()
		return
	}
	v.detached = true
	callbacks := v.callbacks
	v.callbacks = nil
	v.mu.Unlock()

	v.client.UnregisterCallbacks(callbacks...)
	ctx, cancel := context.WithTimeout(context.Background(), detachTimeout)
	defer cancel()
	if _, err := v.client.Call(ctx, "view.destroy", map[string]any{"view": v.id}); err != nil {
		ctxlog.FromContext(ctx).Warn("Remote view destroy failed.", "view", v.id, "error", err)
	}
}

// callback registers fn with the client for as long as the view lives.
func (v *View) callback(fn func(map[string]any) error) map[string]any {
	wire := v.client.RegisterCallback(fn)
	id, _ := wire["$callback"].(string)

	v.mu.Lock()
	detached := v.detached
	if !detached {
		v.callbacks = append(v.callbacks, id)
	}
	v.mu.Unlock()
	if detached {
		v.client.UnregisterCallbacks(id)
	}
	return wire
}

type layerView struct{ layer mapengine.Layer }

func (lv layerView) Layer() mapengine.Layer { return lv.layer }

func goToPayload(viewID string, t mapengine.GoToTarget) map[string]any {
	p := map[string]any{
		"view":   viewID,
		"center": []any{t.Center.Longitude, t.Center.Latitude},
	}
	if t.Zoom != 0 {
		p["zoom"] = t.Zoom
	}
	if t.Scale != 0 {
		p["scale"] = t.Scale
	}
	return p
}

func parseGoTo(args map[string]any) mapengine.GoToTarget {
	var t mapengine.GoToTarget
	if c, ok := args["center"].([]any); ok && len(c) == 2 {
		t.Center.Longitude, _ = c[0].(float64)
		t.Center.Latitude, _ = c[1].(float64)
	}
	t.Zoom, _ = args["zoom"].(float64)
	t.Scale, _ = args["scale"].(float64)
	return t
}

func mapField(p map[string]any, key string) map[string]any {
	m, _ := p[key].(map[string]any)
	return m
}
