package config

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/geoview/internal/model"
)

// ErrDuplicateMap is returned when more than one file declares the map.
var ErrDuplicateMap = errors.New("map settings declared more than once")

// Document is the content of one parsed manifest file.
type Document struct {
	Path string
	// Map is nil when the file has no map settings.
	Map     *model.MapConfig
	Layers  []model.LayerDescriptor
	Widgets []model.WidgetDescriptor
}

// Assemble merges documents in order into one manifest. Layers and widgets
// are appended in document order. At most one document may carry map
// settings; without any, model.DefaultMapConfig applies.
func Assemble(docs ...Document) (*model.Manifest, error) {
	m := &model.Manifest{Map: model.DefaultMapConfig()}
	mapFrom := ""
	for _, d := range docs {
		if d.Map != nil {
			if mapFrom != "" {
				return nil, fmt.Errorf("%w: in '%s' and '%s'", ErrDuplicateMap, mapFrom, d.Path)
			}
			mapFrom = d.Path
			m.Map = *d.Map
		}
		m.Layers = append(m.Layers, d.Layers...)
		m.Widgets = append(m.Widgets, d.Widgets...)
	}
	return m, nil
}
