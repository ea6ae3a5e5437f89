package hcl

import (
	"fmt"

	"github.com/specialistvlad/geoview/internal/model"
)

// translateMap fills unset attributes from model.DefaultMapConfig.
func translateMap(b *mapBlock) (model.MapConfig, error) {
	mc := model.DefaultMapConfig()
	if b.Center != nil {
		if len(b.Center) != 2 {
			return model.MapConfig{}, fmt.Errorf("map: center must be [longitude, latitude], got %d values", len(b.Center))
		}
		mc.Center = model.Point{Longitude: b.Center[0], Latitude: b.Center[1]}
	}
	if b.Zoom != nil {
		mc.Zoom = *b.Zoom
	}
	if b.Basemap != nil {
		mc.BasemapID = *b.Basemap
	}
	return mc, nil
}

func translateLayer(b *layerBlock) (model.LayerDescriptor, error) {
	kind, err := model.ParseLayerKind(b.Kind)
	if err != nil {
		return model.LayerDescriptor{}, fmt.Errorf("layer %q: %w", b.ID, err)
	}
	return model.LayerDescriptor{
		ID:       b.ID,
		Kind:     kind,
		Title:    b.Title,
		Endpoint: b.URL,
		Styling:  translateStyling(b.Styling),
	}, nil
}

func translateStyling(b *stylingBlock) *model.Styling {
	if b == nil {
		return nil
	}
	s := &model.Styling{DefinitionExpression: b.DefinitionExpression}
	if b.Renderer != nil {
		s.Renderer = &model.Renderer{Type: b.Renderer.Type, Symbol: translateSymbol(b.Renderer.Symbol)}
	}
	for _, l := range b.Labels {
		s.Labels = append(s.Labels, model.LabelClass{
			Symbol:     translateSymbol(l.Symbol),
			Placement:  l.Placement,
			Expression: l.Expression,
		})
	}
	return s
}

func translateSymbol(b *symbolBlock) model.Symbol {
	if b == nil {
		return model.Symbol{}
	}
	s := model.Symbol{
		Type:      b.Type,
		URL:       b.URL,
		Width:     b.Width,
		Height:    b.Height,
		Color:     b.Color,
		HaloColor: b.HaloColor,
		HaloSize:  b.HaloSize,
	}
	if b.Font != nil {
		s.Font = &model.Font{Size: b.Font.Size, Family: b.Font.Family, Style: b.Font.Style, Weight: b.Font.Weight}
	}
	return s
}

func translateWidget(b *widgetBlock) (model.WidgetDescriptor, error) {
	kind, err := model.ParseWidgetKind(b.Kind)
	if err != nil {
		return model.WidgetDescriptor{}, fmt.Errorf("widget: %w", err)
	}
	opts, err := decodeOptions(b.Options)
	if err != nil {
		return model.WidgetDescriptor{}, fmt.Errorf("widget %q: %w", b.Kind, err)
	}
	return model.WidgetDescriptor{
		Kind:    kind,
		Dock:    model.DockPosition(b.Dock),
		Expand:  b.Expand,
		Layer:   b.Layer,
		Options: opts,
	}, nil
}
