package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes every top-level block a manifest file may contain.
type fileRoot struct {
	Maps    []*mapBlock    `hcl:"map,block"`
	Layers  []*layerBlock  `hcl:"layer,block"`
	Widgets []*widgetBlock `hcl:"widget,block"`
}

type mapBlock struct {
	Center  []float64 `hcl:"center,optional"`
	Zoom    *float64  `hcl:"zoom,optional"`
	Basemap *string   `hcl:"basemap,optional"`
}

type layerBlock struct {
	Kind    string        `hcl:"kind,label"`
	ID      string        `hcl:"id,label"`
	Title   string        `hcl:"title,optional"`
	URL     string        `hcl:"url"`
	Styling *stylingBlock `hcl:"styling,block"`
}

type stylingBlock struct {
	DefinitionExpression string         `hcl:"definition_expression,optional"`
	Renderer             *rendererBlock `hcl:"renderer,block"`
	Labels               []*labelBlock  `hcl:"label,block"`
}

type rendererBlock struct {
	Type   string       `hcl:"type,optional"`
	Symbol *symbolBlock `hcl:"symbol,block"`
}

type labelBlock struct {
	Placement  string       `hcl:"placement,optional"`
	Expression string       `hcl:"expression,optional"`
	Symbol     *symbolBlock `hcl:"symbol,block"`
}

type symbolBlock struct {
	Type      string     `hcl:"type"`
	URL       string     `hcl:"url,optional"`
	Width     string     `hcl:"width,optional"`
	Height    string     `hcl:"height,optional"`
	Color     string     `hcl:"color,optional"`
	HaloColor string     `hcl:"halo_color,optional"`
	HaloSize  string     `hcl:"halo_size,optional"`
	Font      *fontBlock `hcl:"font,block"`
}

type fontBlock struct {
	Size   string `hcl:"size,optional"`
	Family string `hcl:"family,optional"`
	Style  string `hcl:"style,optional"`
	Weight string `hcl:"weight,optional"`
}

type widgetBlock struct {
	Kind   string `hcl:"kind,label"`
	Dock   string `hcl:"dock"`
	Expand bool   `hcl:"expand,optional"`
	Layer  string `hcl:"layer,optional"`
	// Options is free-form and evaluated to a cty object.
	Options hcl.Expression `hcl:"options,optional"`
}
