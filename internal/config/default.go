package config

import (
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
)

// Default layer endpoints.
const (
	TestLayerURL    = "https://services6.arcgis.com/aoxdxNQ2HQoLa9ob/arcgis/rest/services/testlayer/FeatureServer/0"
	ParcelLayerURL  = "\thttps://geodata.nationaalgeoregister.nl/kadastralekaart/wms/v4_0?service=WMS&version=1.3.0&request=GetCapabilities"
	WindLayerURL    = "https://meteo.arcgisonline.nl/arcgis/rest/services/KNMI/HARM40_V1_WIND/ImageServer"
	TimeSliderDivID = "timeSlider"
)

// Default returns the built-in manifest: a topographic map over Nijmegen
// with a feature, a cadastral WMS and a wind forecast imagery layer, the
// editor, locate, layer list and legend widgets, and a time slider driven by
// the wind layer.
func Default() *model.Manifest {
	return &model.Manifest{
		Map: model.DefaultMapConfig(),
		Layers: []model.LayerDescriptor{
			{ID: "test", Kind: model.LayerFeature, Title: "Test layer", Endpoint: TestLayerURL},
			// The leading tab is part of the configured endpoint and is
			// passed to the engine untouched.
			{ID: "perceel", Kind: model.LayerWebMapService, Title: "Kadastrale kaart", Endpoint: ParcelLayerURL},
			{ID: "wind", Kind: model.LayerImageService, Title: "HARMONIE wind", Endpoint: WindLayerURL},
		},
		Widgets: []model.WidgetDescriptor{
			{Kind: model.WidgetEditor, Dock: model.DockTopRight},
			{Kind: model.WidgetLocate, Dock: model.DockTopLeading, Options: map[string]any{
				mapengine.OptionUseHeadingEnabled: false,
				mapengine.OptionGoToOverride:      "scale:1500",
			}},
			{Kind: model.WidgetLayerList, Dock: model.DockTopLeading},
			{Kind: model.WidgetLegend, Dock: model.DockTopLeft, Expand: true},
			{Kind: model.WidgetTimeSlider, Dock: model.DockManual, Layer: "wind", Options: map[string]any{
				mapengine.OptionContainer:   TimeSliderDivID,
				mapengine.OptionTimeVisible: true,
				mapengine.OptionLoop:        true,
			}},
		},
	}
}

// SpottedIconURL is the marker image of SpottedStyling.
const SpottedIconURL = "https://static.arcgis.com/images/Symbols/Shapes/BlackStarLargeB.png"

// SpottedStyling is the optional styling of the test feature layer: features
// of type 'spotted' drawn as a star marker with a haloed label above each.
// Default leaves the layer unstyled; manifests opt in by declaring it.
func SpottedStyling() *model.Styling {
	return &model.Styling{
		DefinitionExpression: "Type = 'spotted'",
		Renderer: &model.Renderer{
			Type: "simple",
			Symbol: model.Symbol{
				Type:   "picture-marker",
				URL:    SpottedIconURL,
				Width:  "25px",
				Height: "25px",
			},
		},
		Labels: []model.LabelClass{{
			Symbol: model.Symbol{
				Type:      "text",
				Color:     "#FFFFFF",
				HaloColor: "#5E8D74",
				HaloSize:  "2px",
				Font:      &model.Font{Size: "15px", Family: "Noto Sans", Style: "italic", Weight: "normal"},
			},
			Placement:  "above-center",
			Expression: "$feature.Name",
		}},
	}
}
