package memengine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/specialistvlad/geoview/internal/mapengine"
)

type widgetConstructor struct {
	engine *Engine
	name   mapengine.Name
}

func (c *widgetConstructor) CapabilityName() mapengine.Name { return c.name }

func (c *widgetConstructor) NewWidget(ctx context.Context, props mapengine.WidgetProperties) (mapengine.Widget, error) {
	if c.engine.widgetHook != nil {
		c.engine.widgetHook(c.name)
	}
	c.engine.mu.Lock()
	c.engine.widgets++
	c.engine.mu.Unlock()

	if err, ok := c.engine.widgetErrors[c.name]; ok {
		return nil, err
	}
	if props.View == nil {
		return nil, errors.New("widget needs a view")
	}
	if c.name == mapengine.NameExpand && props.Content == nil {
		return nil, errors.New("expand needs content")
	}

	override, err := validateOptions(props.Options)
	if err != nil {
		return nil, err
	}

	w := &Widget{
		id:       c.engine.id(string(c.name)),
		name:     c.name,
		view:     props.View,
		content:  props.Content,
		options:  maps.Clone(props.Options),
		override: override,
	}
	if c.name == mapengine.NameTimeSlider {
		return &TimeSlider{Widget: w}, nil
	}
	return w, nil
}

func validateOptions(opts map[string]any) (mapengine.GoToOverride, error) {
	var override mapengine.GoToOverride
	for key, val := range opts {
		switch key {
		case mapengine.OptionGoToOverride:
			switch fn := val.(type) {
			case mapengine.GoToOverride:
				override = fn
			case func(context.Context, mapengine.View, mapengine.GoToTarget) error:
				override = fn
			default:
				return nil, fmt.Errorf("%w: %s must be a callback, got %T", ErrInvalidOption, key, val)
			}
		case mapengine.OptionUseHeadingEnabled, mapengine.OptionTimeVisible, mapengine.OptionLoop:
			if _, ok := val.(bool); !ok {
				return nil, fmt.Errorf("%w: %s must be a bool, got %T", ErrInvalidOption, key, val)
			}
		case mapengine.OptionContainer:
			if _, ok := val.(string); !ok {
				return nil, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidOption, key, val)
			}
		}
	}
	return override, nil
}

// Widget is a constructed widget.
type Widget struct {
	id       string
	name     mapengine.Name
	view     mapengine.View
	content  mapengine.Widget
	options  map[string]any
	override mapengine.GoToOverride
}

func (w *Widget) WidgetID() string               { return w.id }
func (w *Widget) CapabilityName() mapengine.Name { return w.name }

// Content returns the wrapped widget of an expand container.
func (w *Widget) Content() mapengine.Widget { return w.content }

// Option returns a construction option.
func (w *Widget) Option(key string) (any, bool) {
	v, ok := w.options[key]
	return v, ok
}

// Trigger simulates the user activating a navigating widget such as locate.
// The goTo override runs if one was configured.
func (w *Widget) Trigger(ctx context.Context, target mapengine.GoToTarget) error {
	if w.override != nil {
		return w.override(ctx, w.view, target)
	}
	return w.view.GoTo(ctx, target)
}

// TimeSlider is the time slider widget.
type TimeSlider struct {
	*Widget

	mu          sync.Mutex
	extent      mapengine.TimeExtent
	stops       time.Duration
	initialized bool
}

func (s *TimeSlider) SetFullTimeExtent(extent mapengine.TimeExtent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extent = extent
	s.initialized = true
}

func (s *TimeSlider) SetStops(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops = interval
}

// Initialized reports whether a full time extent was set.
func (s *TimeSlider) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// FullTimeExtent returns the extent and stop interval set on the slider.
func (s *TimeSlider) FullTimeExtent() (mapengine.TimeExtent, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extent, s.stops
}
