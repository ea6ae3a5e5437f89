// Package layers turns layer descriptors into bound layer handles.
//
// Construction is pure: nothing here contacts an endpoint. Malformed URLs
// are the engine's concern and show up later as view-level errors.
package layers

import (
	"context"
	"fmt"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
)

// Build constructs one layer per descriptor, preserving order.
//
// Every kind used by descriptors must be in set as a layer constructor. A
// missing or mistyped constructor fails the whole build.
func Build(ctx context.Context, set *capability.Set, descriptors []model.LayerDescriptor) ([]mapengine.Layer, error) {
	logger := ctxlog.FromContext(ctx)

	out := make([]mapengine.Layer, 0, len(descriptors))
	for _, d := range descriptors {
		ctor, err := set.Layer(d.Kind)
		if err != nil {
			return nil, fmt.Errorf("layer '%s': %w", d.ID, err)
		}
		layer := ctor.NewLayer(mapengine.LayerProperties{
			ID:      d.ID,
			Kind:    d.Kind,
			Title:   d.Title,
			URL:     d.Endpoint,
			Styling: d.Styling,
		})
		logger.Debug("Layer constructed.", "layer", d.ID, "kind", d.Kind, "styled", d.Styling != nil)
		out = append(out, layer)
	}
	return out, nil
}

// Find returns the layer with the given ID.
func Find(layers []mapengine.Layer, id string) (mapengine.Layer, bool) {
	for _, l := range layers {
		if l.ID() == id {
			return l, true
		}
	}
	return nil, false
}
