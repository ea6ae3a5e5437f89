package mapengine

import (
	"context"
	"errors"
	"time"

	"github.com/specialistvlad/geoview/internal/model"
)

// ErrUnknownBasemap is returned by MapConstructor.NewMap when the engine does
// not recognize the basemap identifier.
var ErrUnknownBasemap = errors.New("unknown basemap")

// Widget option keys understood by the bundled engines.
const (
	OptionGoToOverride      = "goToOverride"
	OptionUseHeadingEnabled = "useHeadingEnabled"
	OptionTimeVisible       = "timeVisible"
	OptionLoop              = "loop"
	OptionContainer         = "container"
)

// Capability is a constructor resolved by name.
type Capability interface {
	CapabilityName() Name
}

// LayerProperties are the construction properties of a layer.
type LayerProperties struct {
	ID      string
	Kind    model.LayerKind
	Title   string
	URL     string
	Styling *model.Styling
}

// LayerConstructor builds layers of one kind. Construction never contacts
// the endpoint; the engine resolves it lazily once the layer is drawn.
type LayerConstructor interface {
	Capability
	NewLayer(props LayerProperties) Layer
}

// Layer is a bound layer handle.
type Layer interface {
	ID() string
	Kind() model.LayerKind
	URL() string
	// TimeInfo returns the layer's temporal metadata. It reports false
	// until the engine has loaded the layer, and always for layers without
	// a time dimension.
	TimeInfo() (TimeInfo, bool)
}

// MapConstructor composes a basemap and an ordered list of layers.
type MapConstructor interface {
	Capability
	NewMap(basemap string, layers []Layer) (Map, error)
}

// Map is a composed map handle. Layers are in draw order, bottom first.
type Map interface {
	Basemap() string
	Layers() []Layer
}

// Surface is the already-mounted UI region a view renders into.
type Surface interface {
	SurfaceID() string
	Mounted() bool
}

// ViewProperties are the construction properties of a view.
type ViewProperties struct {
	Surface Surface
	Center  model.Point
	Zoom    float64
	Map     Map
}

// ViewConstructor binds views to surfaces.
type ViewConstructor interface {
	Capability
	NewView(ctx context.Context, props ViewProperties) (View, error)
}

// View is a view handle bound to one surface.
type View interface {
	// WhenReady blocks until first paint is done and every layer is at
	// least attached, the view fails, or ctx is done.
	WhenReady(ctx context.Context) error
	// WhenLayerView blocks until the layer's view-level representation is
	// available.
	WhenLayerView(ctx context.Context, layer Layer) (LayerView, error)
	// Add docks a widget at the given position.
	Add(w Widget, pos model.DockPosition) error
	GoTo(ctx context.Context, target GoToTarget) error
	// Detach synchronously unbinds the view from its surface.
	Detach()
}

// LayerView is the view-level representation of a layer.
type LayerView interface {
	Layer() Layer
}

// GoToTarget is where a goTo navigation should end.
type GoToTarget struct {
	Center model.Point
	Zoom   float64
	Scale  float64
}

// GoToOverride replaces a widget's default navigation. The override owns the
// call to view.GoTo.
type GoToOverride func(ctx context.Context, view View, target GoToTarget) error

// WidgetProperties are the construction properties of a widget.
type WidgetProperties struct {
	View View
	// Content is the wrapped widget of a collapsible container.
	Content Widget
	Options map[string]any
}

// WidgetConstructor builds widgets of one kind.
type WidgetConstructor interface {
	Capability
	NewWidget(ctx context.Context, props WidgetProperties) (Widget, error)
}

// Widget is a constructed widget handle.
type Widget interface {
	WidgetID() string
	CapabilityName() Name
}

// TimeSlider is the widget driven by a layer's temporal metadata.
type TimeSlider interface {
	Widget
	SetFullTimeExtent(extent TimeExtent)
	SetStops(interval time.Duration)
}
