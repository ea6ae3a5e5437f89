package bridge

import (
	"sync"
	"time"

	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
)

type layerConstructor struct {
	name mapengine.Name
	kind model.LayerKind
}

func (c *layerConstructor) CapabilityName() mapengine.Name { return c.name }

// NewLayer builds a local proxy; the remote learns about the layer when the
// map is created.
func (c *layerConstructor) NewLayer(props mapengine.LayerProperties) mapengine.Layer {
	props.Kind = c.kind
	return &Layer{props: props}
}

// Layer is the local proxy of a remote layer.
type Layer struct {
	props mapengine.LayerProperties

	mu       sync.Mutex
	timeInfo *mapengine.TimeInfo
}

func (l *Layer) ID() string            { return l.props.ID }
func (l *Layer) Kind() model.LayerKind { return l.props.Kind }
func (l *Layer) URL() string           { return l.props.URL }

func (l *Layer) TimeInfo() (mapengine.TimeInfo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timeInfo == nil {
		return mapengine.TimeInfo{}, false
	}
	return *l.timeInfo, true
}

func (l *Layer) setTimeInfo(info mapengine.TimeInfo) {
	l.mu.Lock()
	l.timeInfo = &info
	l.mu.Unlock()
}

func (l *Layer) payload() map[string]any {
	p := map[string]any{
		"id":   l.props.ID,
		"kind": l.props.Kind.String(),
		"url":  l.props.URL,
	}
	if l.props.Title != "" {
		p["title"] = l.props.Title
	}
	if s := stylingPayload(l.props.Styling); s != nil {
		p["styling"] = s
	}
	return p
}

func stylingPayload(s *model.Styling) map[string]any {
	if s == nil {
		return nil
	}
	p := map[string]any{}
	if s.DefinitionExpression != "" {
		p["definition_expression"] = s.DefinitionExpression
	}
	if s.Renderer != nil {
		p["renderer"] = map[string]any{"type": s.Renderer.Type, "symbol": symbolPayload(s.Renderer.Symbol)}
	}
	if len(s.Labels) > 0 {
		labels := make([]any, len(s.Labels))
		for i, l := range s.Labels {
			labels[i] = map[string]any{
				"placement":  l.Placement,
				"expression": l.Expression,
				"symbol":     symbolPayload(l.Symbol),
			}
		}
		p["labels"] = labels
	}
	return p
}

func symbolPayload(s model.Symbol) map[string]any {
	p := map[string]any{"type": s.Type}
	for k, v := range map[string]string{
		"url": s.URL, "width": s.Width, "height": s.Height,
		"color": s.Color, "halo_color": s.HaloColor, "halo_size": s.HaloSize,
	} {
		if v != "" {
			p[k] = v
		}
	}
	if s.Font != nil {
		p["font"] = map[string]any{
			"size": s.Font.Size, "family": s.Font.Family,
			"style": s.Font.Style, "weight": s.Font.Weight,
		}
	}
	return p
}

// parseTimeInfo reads {start, end, interval_ms}. ok is false when the
// payload carries no extent.
func parseTimeInfo(p map[string]any) (mapengine.TimeInfo, bool) {
	if p == nil {
		return mapengine.TimeInfo{}, false
	}
	start, err1 := time.Parse(time.RFC3339, stringField(p, "start"))
	end, err2 := time.Parse(time.RFC3339, stringField(p, "end"))
	if err1 != nil || err2 != nil {
		return mapengine.TimeInfo{}, false
	}
	info := mapengine.TimeInfo{FullTimeExtent: mapengine.TimeExtent{Start: start, End: end}}
	if ms, ok := p["interval_ms"].(float64); ok {
		info.Interval = time.Duration(ms) * time.Millisecond
	}
	return info, true
}

func stringField(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}
