// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Manifest, the root container every configuration
// loader produces.
//
// A manifest may be assembled from several files. Loaders append layers and
// widgets in file order, so the order users see on disk is the draw order.
package model

import (
	"errors"
	"fmt"
)

// Manifest is the full declarative input of one session.
type Manifest struct {
	Map     MapConfig
	Layers  []LayerDescriptor
	Widgets []WidgetDescriptor
}

// Layer returns the descriptor with the given ID.
func (m *Manifest) Layer(id string) (LayerDescriptor, bool) {
	for _, l := range m.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return LayerDescriptor{}, false
}

// Validate performs static checks that do not need a mapping engine.
func (m *Manifest) Validate() error {
	var errs []error

	if err := m.Map.Validate(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]struct{}, len(m.Layers))
	for i, l := range m.Layers {
		if l.ID == "" {
			errs = append(errs, fmt.Errorf("layer #%d: id must not be empty", i))
			continue
		}
		if _, dup := seen[l.ID]; dup {
			errs = append(errs, fmt.Errorf("layer %q: duplicate id", l.ID))
		}
		seen[l.ID] = struct{}{}
		if _, ok := layerKindNames[l.Kind]; !ok {
			errs = append(errs, fmt.Errorf("layer %q: unknown kind %s", l.ID, l.Kind))
		}
	}

	for i, w := range m.Widgets {
		if _, ok := widgetKindNames[w.Kind]; !ok {
			errs = append(errs, fmt.Errorf("widget #%d: unknown kind %s", i, w.Kind))
		}
		if !w.Dock.Valid() {
			errs = append(errs, fmt.Errorf("widget %s: unknown dock position %q", w.Kind, w.Dock))
		}
		if w.Kind == WidgetTimeSlider && w.Layer != "" {
			if _, ok := seen[w.Layer]; !ok {
				errs = append(errs, fmt.Errorf("widget %s: layer %q is not declared", w.Kind, w.Layer))
			}
		}
	}

	return errors.Join(errs...)
}
