// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the declarative, format-agnostic description of a
// map session: what the host asks for before initialization starts.
//
// # Core Concepts
//
//   - MapConfig: the center coordinate, zoom level and basemap identifier.
//     It is a plain value; the session copies it once and never re-reads it.
//
//   - LayerDescriptor: one data layer (feature, image service or web map
//     service) with its endpoint and optional styling. A Manifest holds an
//     ordered list of them, and that order is the draw order.
//
//   - WidgetDescriptor: one interactive widget with its dock position and
//     kind-specific options.
//
//   - Manifest: the root container produced by every configuration loader
//     (HCL, YAML or the built-in default).
//
//   - Phase: the lifecycle phase of a session.
//
// Nothing in this package talks to a mapping engine. The session and its
// stage packages translate these descriptions into engine handles.
package model
