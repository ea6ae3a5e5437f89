package config

import (
	"context"

	"github.com/specialistvlad/geoview/internal/model"
)

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads every path (files or directories), merges them in order and
	// returns the resulting manifest. Loaders do not validate semantics;
	// callers run model.Manifest.Validate.
	Load(ctx context.Context, paths ...string) (*model.Manifest, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, paths ...string) (*model.Manifest, error)

func (f LoaderFunc) Load(ctx context.Context, paths ...string) (*model.Manifest, error) {
	return f(ctx, paths...)
}
