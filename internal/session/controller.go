// Package session implements the map-session lifecycle controller: the state
// machine that drives capability loading, layer construction, map
// composition, view binding and widget wiring, reports readiness to its host
// exactly once, and tears the view down deterministically.
//
// Host lifecycle hooks are plain triggers: call Start when the rendering
// surface is mounted and Destroy when it goes away. Both are safe to call
// from different goroutines.
package session

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/composer"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/layers"
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
	"github.com/specialistvlad/geoview/internal/view"
	"github.com/specialistvlad/geoview/internal/widgets"
)

const tracerName = "github.com/specialistvlad/geoview/internal/session"

var errNoLoader = errors.New("no capability loader configured")

// LoadedEvent is delivered to the host once per successful session.
type LoadedEvent struct {
	SessionID string
	Loaded    bool
	// Widgets is the non-fatal widget failure, or nil when every widget
	// was docked.
	Widgets *widgets.PartialWidgetFailure
}

// Options configure a Controller.
type Options struct {
	// Manifest is copied at construction; later changes have no effect.
	Manifest *model.Manifest
	// Surface is the mounted UI region the view binds to.
	Surface mapengine.Surface
	Loader  *capability.Loader
	// Views is the binding table shared with other sessions. Nil gives the
	// session a private one.
	Views *view.Manager
	// Wirer nil means widgets.NewWirer().
	Wirer *widgets.Wirer
	// OnMapLoaded is called exactly once when the session reaches Ready.
	OnMapLoaded func(LoadedEvent)
	// Tracer nil means the global OpenTelemetry tracer provider.
	Tracer trace.Tracer
}

// Controller owns the state of one map session.
type Controller struct {
	id          string
	manifest    model.Manifest
	surface     mapengine.Surface
	loader      *capability.Loader
	views       *view.Manager
	wirer       *widgets.Wirer
	onMapLoaded func(LoadedEvent)
	tracer      trace.Tracer

	mu         sync.Mutex
	phase      model.Phase
	view       *view.Handle
	cancel     context.CancelFunc
	diagnostic *Diagnostic
	widgets    *widgets.Result
	emitted    bool
	logger     *slog.Logger

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a Controller in PhaseUninitialized.
func New(opts Options) *Controller {
	c := &Controller{
		id:          uuid.NewString(),
		surface:     opts.Surface,
		loader:      opts.Loader,
		views:       opts.Views,
		wirer:       opts.Wirer,
		onMapLoaded: opts.OnMapLoaded,
		tracer:      opts.Tracer,
		phase:       model.PhaseUninitialized,
		done:        make(chan struct{}),
	}
	if opts.Manifest != nil {
		c.manifest = copyManifest(opts.Manifest)
	}
	if c.views == nil {
		c.views = view.NewManager()
	}
	if c.wirer == nil {
		c.wirer = widgets.NewWirer()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

func copyManifest(m *model.Manifest) model.Manifest {
	out := model.Manifest{
		Map:     m.Map,
		Layers:  append([]model.LayerDescriptor(nil), m.Layers...),
		Widgets: make([]model.WidgetDescriptor, len(m.Widgets)),
	}
	for i, w := range m.Widgets {
		w.Options = maps.Clone(w.Options)
		out.Widgets[i] = w
	}
	return out
}

// ID returns the session ID.
func (c *Controller) ID() string { return c.id }

// Phase returns the current phase.
func (c *Controller) Phase() model.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// IsLoaded reports whether the session is Ready.
func (c *Controller) IsLoaded() bool {
	return c.Phase() == model.PhaseReady
}

// View returns the owned view handle, or nil before binding and after
// teardown.
func (c *Controller) View() *view.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Diagnostic returns the failure of a Failed session.
func (c *Controller) Diagnostic() *Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diagnostic
}

// Widgets returns the outcome of widget wiring, or nil before it ran.
func (c *Controller) Widgets() *widgets.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.widgets
}

// WidgetFailure returns the non-fatal widget failure, or nil when every
// widget was docked or wiring has not run.
func (c *Controller) WidgetFailure() *widgets.PartialWidgetFailure {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.widgets == nil {
		return nil
	}
	return c.widgets.Failure
}

// Done is closed when the session leaves PhaseLoading, or when it is
// destroyed without ever starting.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) closeDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// live reports whether the session may still mutate state or touch the
// surface.
func (c *Controller) live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == model.PhaseLoading || c.phase == model.PhaseReady
}

// Start runs the initialization sequence and blocks until the session is
// Ready, Failed, or torn down. It returns nil on Ready, a *Diagnostic on
// Failed and ErrDestroyed when Destroy won the race.
//
// ctx bounds the whole session: cancelling it abandons deferred widget
// bindings as well.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch c.phase {
	case model.PhaseUninitialized:
	case model.PhaseDestroyed:
		c.mu.Unlock()
		return ErrDestroyed
	default:
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	logger := ctxlog.FromContext(runCtx).With("session_id", c.id)
	runCtx = ctxlog.WithLogger(runCtx, logger)
	c.cancel = cancel
	c.logger = logger
	c.phase = model.PhaseLoading
	c.mu.Unlock()
	defer c.closeDone()

	runCtx, span := c.tracer.Start(runCtx, "session.start", trace.WithAttributes(
		attribute.String("session.id", c.id),
		attribute.String("map.basemap", c.manifest.Map.BasemapID),
		attribute.Int("map.layers", len(c.manifest.Layers)),
		attribute.Int("map.widgets", len(c.manifest.Widgets)),
	))
	defer span.End()

	logger.Info("Map session starting.", "basemap", c.manifest.Map.BasemapID, "center", c.manifest.Map.Center.String(), "zoom", c.manifest.Map.Zoom)

	err := c.run(runCtx)
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, ErrDestroyed):
		span.SetAttributes(attribute.Bool("session.abandoned", true))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Controller) run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	if err := c.manifest.Validate(); err != nil {
		return c.fail(ctx, StageConfig, err)
	}
	if c.loader == nil {
		return c.fail(ctx, StageCapabilities, errNoLoader)
	}

	var set *capability.Set
	err := c.stage(ctx, StageCapabilities, func(ctx context.Context) error {
		var err error
		set, err = c.loader.Load(ctx, mapengine.RequiredNames(&c.manifest)...)
		return err
	})
	if err != nil {
		return c.fail(ctx, StageCapabilities, err)
	}
	if !c.live() {
		logger.Debug("Session torn down during capability load.")
		return ErrDestroyed
	}

	layerHandles, err := layers.Build(ctx, set, c.manifest.Layers)
	if err != nil {
		return c.fail(ctx, StageCapabilities, err)
	}

	var composed mapengine.Map
	err = c.stage(ctx, StageCompose, func(ctx context.Context) error {
		var err error
		composed, err = composer.Compose(ctx, set, c.manifest.Map.BasemapID, layerHandles)
		return err
	})
	if err != nil {
		return c.fail(ctx, StageCompose, err)
	}

	var handle *view.Handle
	err = c.stage(ctx, StageView, func(ctx context.Context) error {
		var err error
		handle, err = c.views.Bind(ctx, set, mapengine.ViewProperties{
			Surface: c.surface,
			Center:  c.manifest.Map.Center,
			Zoom:    c.manifest.Map.Zoom,
			Map:     composed,
		})
		return err
	})
	if err != nil {
		return c.fail(ctx, StageView, err)
	}

	c.mu.Lock()
	if c.phase != model.PhaseLoading {
		c.mu.Unlock()
		handle.Release()
		logger.Debug("Session torn down during view binding, released the new view.")
		return ErrDestroyed
	}
	c.view = handle
	c.mu.Unlock()

	var wired *widgets.Result
	_ = c.stage(ctx, StageWidgets, func(ctx context.Context) error {
		wired = c.wirer.Wire(ctx, widgets.Input{
			Set:     set,
			View:    handle.View(),
			Layers:  layerHandles,
			Widgets: c.manifest.Widgets,
			Live:    c.live,
		})
		return wired.Err()
	})

	c.mu.Lock()
	if c.phase != model.PhaseLoading {
		c.mu.Unlock()
		return ErrDestroyed
	}
	c.widgets = wired
	c.mu.Unlock()

	err = c.stage(ctx, StageReady, handle.WhenReady)
	if err != nil {
		if !c.live() {
			return ErrDestroyed
		}
		return c.fail(ctx, StageReady, err)
	}

	c.mu.Lock()
	if c.phase != model.PhaseLoading {
		c.mu.Unlock()
		return ErrDestroyed
	}
	c.phase = model.PhaseReady
	emit := !c.emitted
	c.emitted = true
	c.mu.Unlock()

	logger.Info("Map session ready.", "surface", handle.Surface(), "widgets_docked", len(wired.Docked), "widgets_failed", wired.Err() != nil)
	if emit && c.onMapLoaded != nil {
		c.onMapLoaded(LoadedEvent{SessionID: c.id, Loaded: true, Widgets: wired.Failure})
	}
	return nil
}

// stage runs fn inside a child span named after the stage.
func (c *Controller) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "session."+string(stage))
	defer span.End()
	ctx = ctxlog.With(ctx, "stage", stage)

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// fail moves a loading session to Failed. A session destroyed meanwhile
// stays destroyed and the failure is dropped.
func (c *Controller) fail(ctx context.Context, stage Stage, cause error) error {
	c.mu.Lock()
	if c.phase != model.PhaseLoading {
		c.mu.Unlock()
		return ErrDestroyed
	}
	d := &Diagnostic{Stage: stage, Cause: cause}
	c.phase = model.PhaseFailed
	c.diagnostic = d
	c.mu.Unlock()

	ctxlog.FromContext(ctx).Error("Map session failed.", "stage", stage, "error", cause)
	return d
}

// Destroy tears the session down: in-flight steps are cancelled, the view
// is released and the phase becomes Destroyed. It is safe to call any number
// of times from any phase.
func (c *Controller) Destroy() {
	c.mu.Lock()
	if c.phase == model.PhaseDestroyed {
		c.mu.Unlock()
		return
	}
	prev := c.phase
	c.phase = model.PhaseDestroyed
	h := c.view
	c.view = nil
	cancel := c.cancel
	logger := c.logger
	c.mu.Unlock()

	if logger == nil {
		logger = ctxlog.FromContext(context.Background()).With("session_id", c.id)
	}
	if cancel != nil {
		cancel()
	}
	if h != nil {
		h.Release()
	}
	if prev == model.PhaseUninitialized {
		c.closeDone()
	}
	logger.Debug("Map session destroyed.", "previous_phase", prev.String(), "released_view", h != nil)
}
