// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines MapConfig, the host-supplied camera and basemap settings
// of a session.
//
// MapConfig is an immutable value for the duration of one session. Hosts may
// build and mutate their own copy before calling Start; the session keeps
// the copy it received at construction, so later mutation has no effect.
package model

import (
	"errors"
	"fmt"
)

// Default camera and basemap values used when the host leaves them unset.
const (
	DefaultZoom    = 10
	DefaultBasemap = "topographic"
)

// DefaultCenter is Nijmegen, the area the bundled layers cover.
var DefaultCenter = Point{Longitude: 5.7281, Latitude: 51.8320}

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Longitude float64
	Latitude  float64
}

// String renders the point as "lon,lat".
func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.Longitude, p.Latitude)
}

// MapConfig holds the camera and basemap for a session.
type MapConfig struct {
	Center    Point
	Zoom      float64
	BasemapID string
}

// DefaultMapConfig returns the camera and basemap used when a manifest
// leaves them unset.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Center:    DefaultCenter,
		Zoom:      DefaultZoom,
		BasemapID: DefaultBasemap,
	}
}

// ErrInvalidMapConfig is wrapped by every error returned from Validate.
var ErrInvalidMapConfig = errors.New("invalid map config")

// Validate checks the static shape of the configuration. Whether the
// basemap identifier is known is decided later by the loaded engine.
func (c MapConfig) Validate() error {
	if c.Zoom < 0 {
		return fmt.Errorf("%w: zoom must be >= 0, got %g", ErrInvalidMapConfig, c.Zoom)
	}
	if c.Center.Longitude < -180 || c.Center.Longitude > 180 {
		return fmt.Errorf("%w: longitude %g out of range [-180, 180]", ErrInvalidMapConfig, c.Center.Longitude)
	}
	if c.Center.Latitude < -90 || c.Center.Latitude > 90 {
		return fmt.Errorf("%w: latitude %g out of range [-90, 90]", ErrInvalidMapConfig, c.Center.Latitude)
	}
	if c.BasemapID == "" {
		return fmt.Errorf("%w: basemap must not be empty", ErrInvalidMapConfig)
	}
	return nil
}
