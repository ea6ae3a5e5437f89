package widgets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/geoview/internal/mapengine"
)

// OverrideFactory builds a goTo override from the argument part of its
// declarative name, e.g. "1500" for "scale:1500".
type OverrideFactory func(arg string) (mapengine.GoToOverride, error)

// DefaultOverrides are the overrides a manifest can name.
var DefaultOverrides = map[string]OverrideFactory{
	"scale": FixedScale,
}

// FixedScale returns an override that navigates to the target at a fixed
// map scale, the way the locate widget zooms to the user's position.
func FixedScale(arg string) (mapengine.GoToOverride, error) {
	scale, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid scale %q: %w", arg, err)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %q: must be positive", arg)
	}
	return func(ctx context.Context, view mapengine.View, target mapengine.GoToTarget) error {
		target.Scale = scale
		return view.GoTo(ctx, target)
	}, nil
}

// resolveOverride turns "name:arg" into a callback. ok is false when the
// string names no known override.
func resolveOverride(overrides map[string]OverrideFactory, expr string) (mapengine.GoToOverride, bool, error) {
	name, arg, _ := strings.Cut(expr, ":")
	factory, known := overrides[name]
	if !known {
		return nil, false, nil
	}
	fn, err := factory(arg)
	if err != nil {
		return nil, false, err
	}
	return fn, true, nil
}
