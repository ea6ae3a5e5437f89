package yamlconf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/geoview/internal/config"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/model"
	"gopkg.in/yaml.v3"
)

// Parser is the YAML implementation of config.Parser.
type Parser struct{}

// NewLoader returns a config.Loader for .yaml and .yml manifests.
func NewLoader() *config.FileLoader {
	return config.NewFileLoader(Parser{})
}

// Extensions implements config.Parser.
func (Parser) Extensions() []string { return []string{".yaml", ".yml"} }

// ParseFile implements config.Parser.
func (p Parser) ParseFile(ctx context.Context, path string) (config.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Document{}, fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}
	return p.Parse(ctx, data, path)
}

// Parse decodes YAML source held in memory. Unknown keys are rejected.
func (p Parser) Parse(ctx context.Context, src []byte, filename string) (config.Document, error) {
	var root fileRoot
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return config.Document{}, fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}

	doc := config.Document{Path: filename}
	if root.Map != nil {
		mc, err := translateMap(root.Map)
		if err != nil {
			return config.Document{}, fmt.Errorf("%s: %w", filename, err)
		}
		doc.Map = &mc
	}
	for i, l := range root.Layers {
		kind, err := model.ParseLayerKind(l.Kind)
		if err != nil {
			return config.Document{}, fmt.Errorf("%s: layer #%d %q: %w", filename, i, l.ID, err)
		}
		doc.Layers = append(doc.Layers, model.LayerDescriptor{
			ID:       l.ID,
			Kind:     kind,
			Title:    l.Title,
			Endpoint: l.URL,
			Styling:  translateStyling(l.Styling),
		})
	}
	for i, w := range root.Widgets {
		kind, err := model.ParseWidgetKind(w.Kind)
		if err != nil {
			return config.Document{}, fmt.Errorf("%s: widget #%d: %w", filename, i, err)
		}
		var opts map[string]any
		if w.Options != nil {
			opts = normalize(w.Options).(map[string]any)
		}
		doc.Widgets = append(doc.Widgets, model.WidgetDescriptor{
			Kind:    kind,
			Dock:    model.DockPosition(w.Dock),
			Expand:  w.Expand,
			Layer:   w.Layer,
			Options: opts,
		})
	}

	ctxlog.FromContext(ctx).Debug("YAML manifest file decoded.", "file", filename, "map", doc.Map != nil, "layers", len(doc.Layers), "widgets", len(doc.Widgets))
	return doc, nil
}

func translateMap(s *mapSection) (model.MapConfig, error) {
	mc := model.DefaultMapConfig()
	if s.Center != nil {
		if len(s.Center) != 2 {
			return model.MapConfig{}, fmt.Errorf("map: center must be [longitude, latitude], got %d values", len(s.Center))
		}
		mc.Center = model.Point{Longitude: s.Center[0], Latitude: s.Center[1]}
	}
	if s.Zoom != nil {
		mc.Zoom = *s.Zoom
	}
	if s.Basemap != nil {
		mc.BasemapID = *s.Basemap
	}
	return mc, nil
}

func translateStyling(s *stylingEntry) *model.Styling {
	if s == nil {
		return nil
	}
	out := &model.Styling{DefinitionExpression: s.DefinitionExpression}
	if s.Renderer != nil {
		out.Renderer = &model.Renderer{Type: s.Renderer.Type, Symbol: translateSymbol(s.Renderer.Symbol)}
	}
	for _, l := range s.Labels {
		out.Labels = append(out.Labels, model.LabelClass{
			Symbol:     translateSymbol(l.Symbol),
			Placement:  l.Placement,
			Expression: l.Expression,
		})
	}
	return out
}

func translateSymbol(s symbolEntry) model.Symbol {
	out := model.Symbol{
		Type:      s.Type,
		URL:       s.URL,
		Width:     s.Width,
		Height:    s.Height,
		Color:     s.Color,
		HaloColor: s.HaloColor,
		HaloSize:  s.HaloSize,
	}
	if s.Font != nil {
		out.Font = &model.Font{Size: s.Font.Size, Family: s.Font.Family, Style: s.Font.Style, Weight: s.Font.Weight}
	}
	return out
}

// normalize makes YAML option values match what the HCL loader produces:
// every number becomes a float64.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
