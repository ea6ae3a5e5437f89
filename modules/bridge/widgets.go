package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
)

type widgetConstructor struct {
	client *Client
	name   mapengine.Name
}

func (c *widgetConstructor) CapabilityName() mapengine.Name { return c.name }

func (c *widgetConstructor) NewWidget(ctx context.Context, props mapengine.WidgetProperties) (mapengine.Widget, error) {
	v, ok := props.View.(*View)
	if !ok {
		return nil, fmt.Errorf("view %T was not created by the bridge engine", props.View)
	}
	opts, err := c.encodeOptions(v, props.Options)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"name": string(c.name), "view": v.id}
	if len(opts) > 0 {
		params["options"] = opts
	}
	if props.Content != nil {
		params["content"] = props.Content.WidgetID()
	}

	res, err := c.client.Call(ctx, "widget.create", params)
	if err != nil {
		return nil, err
	}
	id, _ := res["id"].(string)
	w := &Widget{id: id, name: c.name, client: c.client}
	if c.name == mapengine.NameTimeSlider {
		return &TimeSlider{Widget: w}, nil
	}
	return w, nil
}

// encodeOptions replaces callbacks with their wire form. Values that cannot
// cross the wire are rejected locally.
func (c *widgetConstructor) encodeOptions(v *View, opts map[string]any) (map[string]any, error) {
	if opts == nil {
		return nil, nil
	}
	out := make(map[string]any, len(opts))
	for k, val := range opts {
		switch fn := val.(type) {
		case mapengine.GoToOverride:
			out[k] = v.callback(goToCallback(v, fn))
		case func(context.Context, mapengine.View, mapengine.GoToTarget) error:
			out[k] = v.callback(goToCallback(v, fn))
		case string, bool, float64, int, nil, map[string]any, []any:
			out[k] = val
		default:
			return nil, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidOption, k, val)
		}
	}
	return out, nil
}

func goToCallback(v *View, fn mapengine.GoToOverride) func(map[string]any) error {
	return func(args map[string]any) error {
		return fn(context.Background(), v, parseGoTo(args))
	}
}

// Widget is the local proxy of a remote widget.
type Widget struct {
	id     string
	name   mapengine.Name
	client *Client
}

func (w *Widget) WidgetID() string               { return w.id }
func (w *Widget) CapabilityName() mapengine.Name { return w.name }

// TimeSlider is the proxy of a remote time slider.
type TimeSlider struct {
	*Widget
}

func (s *TimeSlider) SetFullTimeExtent(extent mapengine.TimeExtent) {
	s.update(map[string]any{"full_time_extent": map[string]any{
		"start": extent.Start.UTC().Format(time.RFC3339),
		"end":   extent.End.UTC().Format(time.RFC3339),
	}})
}

func (s *TimeSlider) SetStops(interval time.Duration) {
	s.update(map[string]any{"stops_ms": float64(interval.Milliseconds())})
}

func (s *TimeSlider) update(fields map[string]any) {
	fields["widget"] = s.id
	ctx := context.Background()
	if _, err := s.client.Call(ctx, "widget.update", fields); err != nil {
		ctxlog.FromContext(ctx).Warn("Remote time slider update failed.", "widget", s.id, "error", err)
	}
}
