// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines LayerDescriptor, the declarative form of one data layer.
//
// Styling is an optional passthrough. The orchestrator never interprets it;
// a nil Styling means the engine renders the layer with its defaults.
package model

import "fmt"

// LayerKind identifies the engine layer type a descriptor maps to.
type LayerKind int

const (
	LayerFeature LayerKind = iota + 1
	LayerImageService
	LayerWebMapService
)

var layerKindNames = map[LayerKind]string{
	LayerFeature:       "feature",
	LayerImageService:  "imagery",
	LayerWebMapService: "wms",
}

// String returns the manifest name of the kind.
func (k LayerKind) String() string {
	if name, ok := layerKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LayerKind(%d)", int(k))
}

// ParseLayerKind maps a manifest name ("feature", "imagery", "wms") to a kind.
func ParseLayerKind(s string) (LayerKind, error) {
	for kind, name := range layerKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown layer kind %q", s)
}

// LayerDescriptor describes one layer of the composed map. The endpoint is an
// opaque string handed to the engine unchanged.
type LayerDescriptor struct {
	ID       string
	Kind     LayerKind
	Title    string
	Endpoint string
	Styling  *Styling
}

// Styling is the optional renderer and label configuration of a layer.
type Styling struct {
	Renderer             *Renderer
	Labels               []LabelClass
	DefinitionExpression string
}

// Renderer is a simple symbol renderer.
type Renderer struct {
	Type   string
	Symbol Symbol
}

// Symbol describes a marker or text symbol. Which fields apply depends on
// Type ("picture-marker", "text", ...).
type Symbol struct {
	Type      string
	URL       string
	Width     string
	Height    string
	Color     string
	HaloColor string
	HaloSize  string
	Font      *Font
}

// Font is the font of a text symbol.
type Font struct {
	Size   string
	Family string
	Style  string
	Weight string
}

// LabelClass describes how features of a layer are labelled.
type LabelClass struct {
	Symbol     Symbol
	Placement  string
	Expression string
}
