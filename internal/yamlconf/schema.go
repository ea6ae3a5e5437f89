package yamlconf

type fileRoot struct {
	Map     *mapSection   `yaml:"map"`
	Layers  []layerEntry  `yaml:"layers"`
	Widgets []widgetEntry `yaml:"widgets"`
}

type mapSection struct {
	Center  []float64 `yaml:"center"`
	Zoom    *float64  `yaml:"zoom"`
	Basemap *string   `yaml:"basemap"`
}

type layerEntry struct {
	ID      string        `yaml:"id"`
	Kind    string        `yaml:"kind"`
	Title   string        `yaml:"title"`
	URL     string        `yaml:"url"`
	Styling *stylingEntry `yaml:"styling"`
}

type stylingEntry struct {
	DefinitionExpression string         `yaml:"definition_expression"`
	Renderer             *rendererEntry `yaml:"renderer"`
	Labels               []labelEntry   `yaml:"labels"`
}

type rendererEntry struct {
	Type   string      `yaml:"type"`
	Symbol symbolEntry `yaml:"symbol"`
}

type labelEntry struct {
	Placement  string      `yaml:"placement"`
	Expression string      `yaml:"expression"`
	Symbol     symbolEntry `yaml:"symbol"`
}

type symbolEntry struct {
	Type      string     `yaml:"type"`
	URL       string     `yaml:"url"`
	Width     string     `yaml:"width"`
	Height    string     `yaml:"height"`
	Color     string     `yaml:"color"`
	HaloColor string     `yaml:"halo_color"`
	HaloSize  string     `yaml:"halo_size"`
	Font      *fontEntry `yaml:"font"`
}

type fontEntry struct {
	Size   string `yaml:"size"`
	Family string `yaml:"family"`
	Style  string `yaml:"style"`
	Weight string `yaml:"weight"`
}

type widgetEntry struct {
	Kind    string         `yaml:"kind"`
	Dock    string         `yaml:"dock"`
	Expand  bool           `yaml:"expand"`
	Layer   string         `yaml:"layer"`
	Options map[string]any `yaml:"options"`
}
