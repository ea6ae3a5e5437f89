// Package composer assembles a map from a basemap and ordered layers.
package composer

import (
	"context"
	"fmt"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
)

// CompositionError reports a map that could not be composed.
type CompositionError struct {
	Basemap string
	Cause   error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("failed to compose map with basemap '%s': %v", e.Basemap, e.Cause)
}

func (e *CompositionError) Unwrap() error { return e.Cause }

// Compose returns the composed map handle. Layers keep the order given.
func Compose(ctx context.Context, set *capability.Set, basemap string, layers []mapengine.Layer) (mapengine.Map, error) {
	logger := ctxlog.FromContext(ctx)

	ctor, err := set.Map()
	if err != nil {
		return nil, &CompositionError{Basemap: basemap, Cause: err}
	}

	m, err := ctor.NewMap(basemap, layers)
	if err != nil {
		return nil, &CompositionError{Basemap: basemap, Cause: err}
	}

	logger.Debug("Map composed.", "basemap", basemap, "layers", len(layers))
	return m, nil
}
