package mapengine

import (
	"github.com/specialistvlad/geoview/internal/model"
)

// Name is the string identifier a capability is resolved by.
type Name string

const (
	NameMap          Name = "map"
	NameMapView      Name = "views/map-view"
	NameFeatureLayer Name = "layers/feature"
	NameImageryLayer Name = "layers/imagery"
	NameWMSLayer     Name = "layers/wms"
	NameEditor       Name = "widgets/editor"
	NameLocate       Name = "widgets/locate"
	NameLayerList    Name = "widgets/layer-list"
	NameLegend       Name = "widgets/legend"
	NameExpand       Name = "widgets/expand"
	NameTimeSlider   Name = "widgets/time-slider"
)

// AllNames lists every capability the orchestrator knows how to use.
var AllNames = []Name{
	NameMap,
	NameMapView,
	NameFeatureLayer,
	NameImageryLayer,
	NameWMSLayer,
	NameEditor,
	NameLocate,
	NameLayerList,
	NameLegend,
	NameExpand,
	NameTimeSlider,
}

// LayerName returns the capability that constructs layers of the given kind.
func LayerName(kind model.LayerKind) Name {
	switch kind {
	case model.LayerFeature:
		return NameFeatureLayer
	case model.LayerImageService:
		return NameImageryLayer
	case model.LayerWebMapService:
		return NameWMSLayer
	}
	return Name("layers/" + kind.String())
}

// WidgetName returns the capability that constructs widgets of the given kind.
func WidgetName(kind model.WidgetKind) Name {
	switch kind {
	case model.WidgetEditor:
		return NameEditor
	case model.WidgetLocate:
		return NameLocate
	case model.WidgetLayerList:
		return NameLayerList
	case model.WidgetLegend:
		return NameLegend
	case model.WidgetTimeSlider:
		return NameTimeSlider
	}
	return Name("widgets/" + kind.String())
}

// RequiredNames returns the capabilities a manifest needs, in a stable order
// and without duplicates.
func RequiredNames(m *model.Manifest) []Name {
	seen := make(map[Name]struct{})
	var names []Name
	add := func(n Name) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}

	add(NameMap)
	add(NameMapView)
	for _, l := range m.Layers {
		add(LayerName(l.Kind))
	}
	for _, w := range m.Widgets {
		add(WidgetName(w.Kind))
		if w.Expand {
			add(NameExpand)
		}
	}
	return names
}
