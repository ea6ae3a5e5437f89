package widgets

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
)

// BindingState is the progress of a time slider's deferred binding.
type BindingState int

const (
	// BindingPending: still waiting for the layer view.
	BindingPending BindingState = iota
	// BindingBound: the slider has its full extent and stops.
	BindingBound
	// BindingNoTimeInfo: the layer exposes no temporal metadata; the
	// slider stays constructed and uninitialized.
	BindingNoTimeInfo
	// BindingAbandoned: the session went away first.
	BindingAbandoned
	// BindingFailed: the layer view could not be created.
	BindingFailed
)

func (s BindingState) String() string {
	switch s {
	case BindingPending:
		return "pending"
	case BindingBound:
		return "bound"
	case BindingNoTimeInfo:
		return "no-time-info"
	case BindingAbandoned:
		return "abandoned"
	case BindingFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExtentUnit is the granularity the slider's full extent is widened to.
const ExtentUnit = time.Hour

// TimeBinding binds a time slider to a layer's temporal metadata once the
// layer's view-level representation exists. It runs independently of view
// readiness.
type TimeBinding struct {
	LayerID string
	slider  mapengine.TimeSlider
	done    chan struct{}

	mu       sync.Mutex
	state    BindingState
	extent   mapengine.TimeExtent
	interval time.Duration
	err      error
}

func newTimeBinding(layerID string, slider mapengine.TimeSlider) *TimeBinding {
	return &TimeBinding{
		LayerID: layerID,
		slider:  slider,
		done:    make(chan struct{}),
	}
}

// Done is closed once the binding reached a final state.
func (b *TimeBinding) Done() <-chan struct{} {
	return b.done
}

// State returns the current state.
func (b *TimeBinding) State() BindingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Extent returns the extent and stop interval applied to the slider. Both are
// zero unless the state is BindingBound.
func (b *TimeBinding) Extent() (mapengine.TimeExtent, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.extent, b.interval
}

// Err returns the layer view error of a BindingFailed binding.
func (b *TimeBinding) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *TimeBinding) finish(state BindingState, err error) {
	b.mu.Lock()
	b.state, b.err = state, err
	b.mu.Unlock()
}

func (b *TimeBinding) run(ctx context.Context, view mapengine.View, layer mapengine.Layer, live func() bool) {
	defer close(b.done)
	logger := ctxlog.FromContext(ctx).With("layer", b.LayerID, "widget", b.slider.WidgetID())

	lv, err := view.WhenLayerView(ctx, layer)
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("Time slider binding abandoned.")
			b.finish(BindingAbandoned, nil)
			return
		}
		logger.Warn("Layer view unavailable, time slider stays uninitialized.", "error", err)
		b.finish(BindingFailed, err)
		return
	}

	info, ok := lv.Layer().TimeInfo()
	if !ok {
		logger.Info("Layer exposes no temporal metadata, time slider stays uninitialized.")
		b.finish(BindingNoTimeInfo, nil)
		return
	}

	if live != nil && !live() {
		logger.Debug("Session no longer live, time slider binding abandoned.")
		b.finish(BindingAbandoned, nil)
		return
	}

	extent := info.FullTimeExtent.ExpandTo(ExtentUnit)
	b.slider.SetFullTimeExtent(extent)
	if info.Interval > 0 {
		b.slider.SetStops(info.Interval)
	}

	b.mu.Lock()
	b.state = BindingBound
	b.extent, b.interval = extent, info.Interval
	b.mu.Unlock()
	logger.Debug("Time slider bound.", "start", extent.Start, "end", extent.End, "interval", info.Interval)
}
