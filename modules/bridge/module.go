package bridge

import (
	"context"
	"fmt"

	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
	"github.com/specialistvlad/geoview/internal/registry"
)

// Module registers proxy capabilities for a remote engine.
type Module struct {
	Client *Client
	// APIKey is forwarded to the remote with every capability load.
	APIKey string
}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	for _, name := range mapengine.AllNames {
		r.RegisterProvider(name, m.provider(name))
	}
}

// Surface returns the remote surface with the given element ID. The remote
// page owns mounting; the surface is assumed mounted.
func (m *Module) Surface(id string) mapengine.Surface {
	return Surface{ID: id}
}

func (m *Module) provider(name mapengine.Name) registry.Provider {
	return func(ctx context.Context) (mapengine.Capability, error) {
		params := map[string]any{"name": string(name)}
		if m.APIKey != "" {
			params["api_key"] = m.APIKey
		}
		if _, err := m.Client.Call(ctx, "capability.load", params); err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Remote capability loaded.", "name", name)
		return m.capability(name), nil
	}
}

func (m *Module) capability(name mapengine.Name) mapengine.Capability {
	switch name {
	case mapengine.NameMap:
		return &mapConstructor{client: m.Client}
	case mapengine.NameMapView:
		return &viewConstructor{client: m.Client}
	case mapengine.NameFeatureLayer:
		return &layerConstructor{name: name, kind: model.LayerFeature}
	case mapengine.NameImageryLayer:
		return &layerConstructor{name: name, kind: model.LayerImageService}
	case mapengine.NameWMSLayer:
		return &layerConstructor{name: name, kind: model.LayerWebMapService}
	default:
		return &widgetConstructor{client: m.Client, name: name}
	}
}

// Surface is a DOM element of the remote page.
type Surface struct {
	ID string
}

func (s Surface) SurfaceID() string { return s.ID }
func (s Surface) Mounted() bool     { return true }

type mapConstructor struct{ client *Client }

func (c *mapConstructor) CapabilityName() mapengine.Name { return mapengine.NameMap }

func (c *mapConstructor) NewMap(basemap string, layers []mapengine.Layer) (mapengine.Map, error) {
	payload := make([]any, 0, len(layers))
	for _, l := range layers {
		rl, ok := l.(*Layer)
		if !ok {
			return nil, fmt.Errorf("layer %q was not built by the bridge engine", l.ID())
		}
		payload = append(payload, rl.payload())
	}
	res, err := c.client.Call(context.Background(), "map.create", map[string]any{
		"basemap": basemap,
		"layers":  payload,
	})
	if err != nil {
		return nil, err
	}
	id, _ := res["id"].(string)
	return &Map{id: id, basemap: basemap, layers: append([]mapengine.Layer(nil), layers...)}, nil
}

// Map is a remote map handle.
type Map struct {
	id      string
	basemap string
	layers  []mapengine.Layer
}

func (m *Map) Basemap() string           { return m.basemap }
func (m *Map) Layers() []mapengine.Layer { return append([]mapengine.Layer(nil), m.layers...) }

// ID returns the remote map ID.
func (m *Map) ID() string { return m.id }
