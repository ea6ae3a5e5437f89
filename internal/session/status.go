package session

import (
	"time"

	"github.com/specialistvlad/geoview/internal/model"
	"github.com/specialistvlad/geoview/internal/widgets"
)

// Status is a point-in-time snapshot of a session, shaped for the status
// endpoint.
type Status struct {
	SessionID string          `json:"session_id"`
	Phase     string          `json:"phase"`
	Loaded    bool            `json:"loaded"`
	Surface   string          `json:"surface,omitempty"`
	Error     *StatusError    `json:"error,omitempty"`
	Widgets   []WidgetStatus  `json:"widgets,omitempty"`
	Bindings  []BindingStatus `json:"time_bindings,omitempty"`
}

// StatusError describes the failure of a Failed session.
type StatusError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// WidgetStatus is the wiring outcome of one widget.
type WidgetStatus struct {
	Name   string `json:"name"`
	Docked bool   `json:"docked"`
	Error  string `json:"error,omitempty"`
}

// BindingStatus is the state of one deferred time slider binding.
type BindingStatus struct {
	Layer string `json:"layer"`
	State string `json:"state"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Status returns a snapshot of the session.
func (c *Controller) Status() Status {
	c.mu.Lock()
	phase, h, d, res := c.phase, c.view, c.diagnostic, c.widgets
	c.mu.Unlock()

	st := Status{
		SessionID: c.id,
		Phase:     phase.String(),
		Loaded:    phase == model.PhaseReady,
	}
	if h != nil {
		st.Surface = h.Surface()
	}
	if d != nil {
		st.Error = &StatusError{Stage: string(d.Stage), Message: d.Cause.Error()}
	}
	if res != nil {
		st.Widgets = widgetStatuses(res)
		for _, b := range res.Bindings {
			bs := BindingStatus{Layer: b.LayerID, State: b.State().String()}
			if extent, _ := b.Extent(); !extent.IsZero() {
				bs.Start = extent.Start.UTC().Format(time.RFC3339)
				bs.End = extent.End.UTC().Format(time.RFC3339)
			}
			st.Bindings = append(st.Bindings, bs)
		}
	}
	return st
}

func widgetStatuses(res *widgets.Result) []WidgetStatus {
	out := make([]WidgetStatus, 0, len(res.Docked))
	for _, d := range res.Docked {
		out = append(out, WidgetStatus{Name: d.Descriptor.Name(), Docked: true})
	}
	if res.Failure != nil {
		for _, f := range res.Failure.Failed {
			out = append(out, WidgetStatus{Name: f.Widget, Error: f.Err.Error()})
		}
	}
	return out
}
