// Package widgets constructs interactive widgets against a view and docks
// them at their anchor positions.
//
// Widgets are independent of each other. A widget that fails to construct
// or dock is recorded in a PartialWidgetFailure and the remaining widgets
// are still wired. Time sliders additionally start a deferred binding that
// waits for their layer's view and reads its temporal metadata.
package widgets

import (
	"context"
	"fmt"
	"maps"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/layers"
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
)

// Input is everything one Wire call works on.
type Input struct {
	Set     *capability.Set
	View    mapengine.View
	Layers  []mapengine.Layer
	Widgets []model.WidgetDescriptor
	// Live is checked before each widget is constructed and by deferred
	// steps before they touch a widget. Nil means always live.
	Live func() bool
}

// Docked is a successfully wired widget.
type Docked struct {
	Descriptor model.WidgetDescriptor
	// Widget is what was docked: the collapsible container for expanded
	// descriptors, the widget itself otherwise.
	Widget mapengine.Widget
	// Content is the inner widget of an expanded descriptor.
	Content mapengine.Widget
}

// Result is the outcome of one Wire call.
type Result struct {
	Docked   []Docked
	Bindings []*TimeBinding
	Failure  *PartialWidgetFailure
	// Abandoned is set when the session went away before every widget
	// was wired.
	Abandoned bool
}

// Err returns the partial failure as an error, or nil.
func (r *Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func (in Input) live() bool {
	return in.Live == nil || in.Live()
}

// Wirer wires widgets. The zero value uses DefaultOverrides.
type Wirer struct {
	Overrides map[string]OverrideFactory
}

// NewWirer returns a Wirer with the default goTo overrides.
func NewWirer() *Wirer {
	return &Wirer{Overrides: DefaultOverrides}
}

// Wire constructs and docks every descriptor in order.
func (w *Wirer) Wire(ctx context.Context, in Input) *Result {
	logger := ctxlog.FromContext(ctx)
	res := &Result{}
	var failure PartialWidgetFailure

	for i, d := range in.Widgets {
		if !in.live() {
			logger.Debug("Session no longer live, widget wiring stopped.", "skipped", len(in.Widgets)-i)
			res.Abandoned = true
			break
		}
		docked, binding, err := w.wireOne(ctx, in, d)
		if err != nil {
			logger.Warn("Widget failed.", "widget", d.Name(), "error", err)
			failure.Failed = append(failure.Failed, Failure{Widget: d.Name(), Kind: d.Kind, Err: err})
			continue
		}
		res.Docked = append(res.Docked, docked)
		failure.Succeeded = append(failure.Succeeded, d.Name())
		if binding != nil {
			res.Bindings = append(res.Bindings, binding)
		}
		logger.Debug("Widget wired.", "widget", d.Name(), "expanded", d.Expand)
	}

	if len(failure.Failed) > 0 {
		res.Failure = &failure
	}
	logger.Info("Widgets wired.", "docked", len(res.Docked), "failed", len(failure.Failed), "deferred_bindings", len(res.Bindings))
	return res
}

func (w *Wirer) wireOne(ctx context.Context, in Input, d model.WidgetDescriptor) (docked Docked, binding *TimeBinding, err error) {
	// An engine that panics on bad options must not take the other widgets
	// down with it.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("widget constructor panicked: %v", r)
		}
	}()

	ctor, err := in.Set.Widget(mapengine.WidgetName(d.Kind))
	if err != nil {
		return Docked{}, nil, err
	}

	opts, err := w.resolveOptions(d.Options)
	if err != nil {
		return Docked{}, nil, err
	}

	widget, err := ctor.NewWidget(ctx, mapengine.WidgetProperties{View: in.View, Options: opts})
	if err != nil {
		return Docked{}, nil, fmt.Errorf("construct %s: %w", d.Kind, err)
	}
	docked = Docked{Descriptor: d, Widget: widget}

	if d.Expand {
		expandCtor, err := in.Set.Widget(mapengine.NameExpand)
		if err != nil {
			return Docked{}, nil, err
		}
		container, err := expandCtor.NewWidget(ctx, mapengine.WidgetProperties{View: in.View, Content: widget})
		if err != nil {
			return Docked{}, nil, fmt.Errorf("wrap %s in expand: %w", d.Kind, err)
		}
		docked.Widget, docked.Content = container, widget
	}

	if d.Dock != model.DockManual {
		if err := in.View.Add(docked.Widget, d.Dock); err != nil {
			return Docked{}, nil, fmt.Errorf("dock %s at %s: %w", d.Kind, d.Dock, err)
		}
	}

	if d.Kind == model.WidgetTimeSlider && d.Layer != "" {
		slider, ok := widget.(mapengine.TimeSlider)
		if !ok {
			return Docked{}, nil, fmt.Errorf("widget %T does not implement a time slider", widget)
		}
		layer, ok := layers.Find(in.Layers, d.Layer)
		if !ok {
			return Docked{}, nil, fmt.Errorf("time slider layer %q not found", d.Layer)
		}
		binding = newTimeBinding(d.Layer, slider)
		if !in.live() {
			binding.finish(BindingAbandoned, nil)
			close(binding.done)
			return docked, binding, nil
		}
		go binding.run(ctx, in.View, layer, in.Live)
	}

	return docked, binding, nil
}

// resolveOptions copies opts and replaces a goToOverride naming a known
// override with its callback. Unknown names stay strings, which engines
// reject as an invalid callback.
func (w *Wirer) resolveOptions(opts map[string]any) (map[string]any, error) {
	if opts == nil {
		return nil, nil
	}
	out := maps.Clone(opts)

	expr, ok := out[mapengine.OptionGoToOverride].(string)
	if !ok {
		return out, nil
	}
	overrides := w.Overrides
	if overrides == nil {
		overrides = DefaultOverrides
	}
	fn, resolved, err := resolveOverride(overrides, expr)
	if err != nil {
		return nil, fmt.Errorf("option %s: %w", mapengine.OptionGoToOverride, err)
	}
	if resolved {
		out[mapengine.OptionGoToOverride] = fn
	}
	return out, nil
}
