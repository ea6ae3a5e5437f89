// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines WidgetDescriptor, the declarative form of one interactive
// widget and the dock position it attaches to.
//
// Options are kind-specific and passed to the engine as-is, with one
// exception handled by the widget wirer: a string "goToOverride" naming a
// known override is resolved to a callback before construction.
package model

import "fmt"

// WidgetKind identifies the engine widget type a descriptor maps to.
type WidgetKind int

const (
	WidgetEditor WidgetKind = iota + 1
	WidgetLocate
	WidgetLayerList
	WidgetLegend
	WidgetTimeSlider
)

var widgetKindNames = map[WidgetKind]string{
	WidgetEditor:     "editor",
	WidgetLocate:     "locate",
	WidgetLayerList:  "layer_list",
	WidgetLegend:     "legend",
	WidgetTimeSlider: "time_slider",
}

// String returns the manifest name of the kind.
func (k WidgetKind) String() string {
	if name, ok := widgetKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("WidgetKind(%d)", int(k))
}

// ParseWidgetKind maps a manifest name to a kind.
func ParseWidgetKind(s string) (WidgetKind, error) {
	for kind, name := range widgetKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown widget kind %q", s)
}

// DockPosition is a named UI region of the view.
type DockPosition string

const (
	DockTopLeft        DockPosition = "top-left"
	DockTopRight       DockPosition = "top-right"
	DockBottomLeft     DockPosition = "bottom-left"
	DockBottomRight    DockPosition = "bottom-right"
	DockTopLeading     DockPosition = "top-leading"
	DockTopTrailing    DockPosition = "top-trailing"
	DockBottomLeading  DockPosition = "bottom-leading"
	DockBottomTrailing DockPosition = "bottom-trailing"
	// DockManual widgets are constructed against the view but placed by the
	// host page in a container of its own.
	DockManual DockPosition = "manual"
)

// Valid reports whether p is one of the known positions.
func (p DockPosition) Valid() bool {
	switch p {
	case DockTopLeft, DockTopRight, DockBottomLeft, DockBottomRight,
		DockTopLeading, DockTopTrailing, DockBottomLeading, DockBottomTrailing,
		DockManual:
		return true
	}
	return false
}

// WidgetDescriptor describes one widget.
type WidgetDescriptor struct {
	Kind WidgetKind
	Dock DockPosition
	// Expand wraps the widget in a collapsible container before docking.
	Expand bool
	// Layer is the ID of the layer whose temporal metadata drives a time
	// slider. Other kinds ignore it.
	Layer   string
	Options map[string]any
}

// Name is a short label for logs and failure reports, e.g. "legend@top-left".
func (d WidgetDescriptor) Name() string {
	return fmt.Sprintf("%s@%s", d.Kind, d.Dock)
}
