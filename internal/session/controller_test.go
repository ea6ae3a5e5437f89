package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/composer"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
	"github.com/specialistvlad/geoview/internal/registry"
	"github.com/specialistvlad/geoview/internal/view"
	"github.com/specialistvlad/geoview/internal/widgets"
	"github.com/specialistvlad/geoview/modules/memengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var windExtent = mapengine.TimeExtent{
	Start: time.Date(2025, 3, 1, 6, 20, 0, 0, time.UTC),
	End:   time.Date(2025, 3, 3, 5, 40, 0, 0, time.UTC),
}

func testManifest() *model.Manifest {
	return &model.Manifest{
		Map: model.MapConfig{Center: model.DefaultCenter, Zoom: 14, BasemapID: "hybrid"},
		Layers: []model.LayerDescriptor{
			{ID: "test", Kind: model.LayerFeature, Endpoint: "https://example.test/FeatureServer/0"},
			{ID: "perceel", Kind: model.LayerWebMapService, Endpoint: "https://example.test/wms"},
			{ID: "wind", Kind: model.LayerImageService, Endpoint: "https://example.test/ImageServer"},
		},
		Widgets: []model.WidgetDescriptor{
			{Kind: model.WidgetEditor, Dock: model.DockTopRight},
			{Kind: model.WidgetLocate, Dock: model.DockTopLeading, Options: map[string]any{
				mapengine.OptionUseHeadingEnabled: false,
				mapengine.OptionGoToOverride:      "scale:1500",
			}},
			{Kind: model.WidgetLayerList, Dock: model.DockTopLeading},
			{Kind: model.WidgetLegend, Dock: model.DockTopLeft, Expand: true},
			{Kind: model.WidgetTimeSlider, Dock: model.DockManual, Layer: "wind", Options: map[string]any{
				mapengine.OptionContainer:   "timeSlider",
				mapengine.OptionTimeVisible: true,
				mapengine.OptionLoop:        true,
			}},
		},
	}
}

type harness struct {
	engine  *memengine.Engine
	loader  *capability.Loader
	surface *memengine.Surface
	views   *view.Manager

	mu     sync.Mutex
	events []LoadedEvent
}

func newHarness(t *testing.T, opts ...memengine.Option) *harness {
	t.Helper()
	opts = append([]memengine.Option{memengine.WithLayerTimeInfo("wind", mapengine.TimeInfo{
		FullTimeExtent: windExtent,
		Interval:       time.Hour,
	})}, opts...)
	e := memengine.New(opts...)
	r := registry.New()
	e.Register(r)
	return &harness{
		engine:  e,
		loader:  capability.NewLoader(r, capability.WithResolveTimeout(5*time.Second)),
		surface: memengine.NewSurface("viewDiv"),
		views:   view.NewManager(),
	}
}

func (h *harness) session(m *model.Manifest) *Controller {
	return New(Options{
		Manifest: m,
		Surface:  h.surface,
		Loader:   h.loader,
		Views:    h.views,
		OnMapLoaded: func(ev LoadedEvent) {
			h.mu.Lock()
			h.events = append(h.events, ev)
			h.mu.Unlock()
		},
	})
}

func (h *harness) emitted() []LoadedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LoadedEvent(nil), h.events...)
}

func waitBinding(t *testing.T, b *widgets.TimeBinding) {
	t.Helper()
	select {
	case <-b.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("time binding for %s did not finish", b.LayerID)
	}
}

func TestController_ReachesReady(t *testing.T) {
	h := newHarness(t)
	s := h.session(testManifest())
	assert.Equal(t, model.PhaseUninitialized, s.Phase())

	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, model.PhaseReady, s.Phase())
	assert.True(t, s.IsLoaded())
	require.NotNil(t, s.View())
	assert.Nil(t, s.Diagnostic())

	events := h.emitted()
	require.Len(t, events, 1)
	assert.True(t, events[0].Loaded)
	assert.Equal(t, s.ID(), events[0].SessionID)
	assert.Nil(t, events[0].Widgets)

	v := h.engine.LastView()
	require.NotNil(t, v)
	assert.Equal(t, model.DefaultCenter, v.Center())
	assert.Equal(t, 14.0, v.Zoom())
	assert.Equal(t, "hybrid", v.Map().Basemap())

	var ids []string
	for _, l := range v.Map().Layers() {
		ids = append(ids, l.ID())
	}
	assert.Equal(t, []string{"test", "perceel", "wind"}, ids)

	assert.Len(t, v.Docked(model.DockTopRight), 1)
	assert.Len(t, v.Docked(model.DockTopLeading), 2)
	topLeft := v.Docked(model.DockTopLeft)
	require.Len(t, topLeft, 1)
	assert.Equal(t, mapengine.NameExpand, topLeft[0].CapabilityName())
	assert.Equal(t, 4, v.DockedCount(), "the time slider is constructed but not docked")

	select {
	case <-s.Done():
	default:
		t.Fatal("Done must be closed once Start returned")
	}
}

func TestController_TimeSliderBinding(t *testing.T) {
	h := newHarness(t, memengine.WithLayerViewDelay(20*time.Millisecond))
	s := h.session(testManifest())
	require.NoError(t, s.Start(context.Background()))

	res := s.Widgets()
	require.NotNil(t, res)
	require.Len(t, res.Bindings, 1)
	b := res.Bindings[0]
	waitBinding(t, b)

	assert.Equal(t, widgets.BindingBound, b.State())
	extent, interval := b.Extent()
	assert.Equal(t, time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC), extent.Start)
	assert.Equal(t, time.Date(2025, 3, 3, 6, 0, 0, 0, time.UTC), extent.End)
	assert.Equal(t, time.Hour, interval)

	var slider *memengine.TimeSlider
	for _, d := range res.Docked {
		if ts, ok := d.Widget.(*memengine.TimeSlider); ok {
			slider = ts
		}
	}
	require.NotNil(t, slider)
	assert.True(t, slider.Initialized())
	container, ok := slider.Option(mapengine.OptionContainer)
	require.True(t, ok)
	assert.Equal(t, "timeSlider", container)
}

func TestController_TimeSliderWithoutTimeInfo(t *testing.T) {
	e := memengine.New()
	r := registry.New()
	e.Register(r)
	h := &harness{engine: e, loader: capability.NewLoader(r), surface: memengine.NewSurface("viewDiv"), views: view.NewManager()}

	s := h.session(testManifest())
	require.NoError(t, s.Start(context.Background()))

	b := s.Widgets().Bindings[0]
	waitBinding(t, b)
	assert.Equal(t, widgets.BindingNoTimeInfo, b.State())
	assert.True(t, s.IsLoaded(), "missing temporal metadata is not a session failure")
}

func TestController_ReadinessDoesNotWaitForTimeBinding(t *testing.T) {
	h := newHarness(t, memengine.WithoutLayerView("wind"))
	s := h.session(testManifest())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsLoaded())

	b := s.Widgets().Bindings[0]
	assert.Equal(t, widgets.BindingPending, b.State())

	s.Destroy()
	waitBinding(t, b)
	assert.Equal(t, widgets.BindingAbandoned, b.State())
}

func TestController_UnknownBasemap(t *testing.T) {
	h := newHarness(t)
	m := testManifest()
	m.Map.BasemapID = "not-a-real-basemap"
	s := h.session(m)

	err := s.Start(context.Background())

	var diag *Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, StageCompose, diag.Stage)
	var compErr *composer.CompositionError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "not-a-real-basemap", compErr.Basemap)
	assert.ErrorIs(t, err, mapengine.ErrUnknownBasemap)

	assert.Equal(t, model.PhaseFailed, s.Phase())
	assert.Same(t, diag, s.Diagnostic())
	assert.Nil(t, s.View())
	assert.Empty(t, h.emitted())
	assert.Empty(t, h.engine.Views())
}

func TestController_CapabilityLoadFailure(t *testing.T) {
	netErr := errors.New("dial tcp: network is unreachable")
	h := newHarness(t, memengine.WithResolveError(mapengine.NameMapView, netErr))
	s := h.session(testManifest())

	err := s.Start(context.Background())

	var loadErr *capability.CapabilityLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, mapengine.NameMapView, loadErr.Name)
	assert.ErrorIs(t, err, netErr)
	assert.Equal(t, StageCapabilities, s.Diagnostic().Stage)

	assert.Equal(t, model.PhaseFailed, s.Phase())
	assert.Nil(t, s.View())
	assert.Empty(t, h.emitted())
	assert.Empty(t, h.engine.Views())
	assert.False(t, h.views.Bound(h.surface.SurfaceID()))
}

// overridingResolver resolves one name to a fixed value and defers the rest.
type overridingResolver struct {
	capability.Resolver
	name mapengine.Name
	cap  mapengine.Capability
}

func (r overridingResolver) Resolve(ctx context.Context, name mapengine.Name) (mapengine.Capability, error) {
	if name == r.name {
		return r.cap, nil
	}
	return r.Resolver.Resolve(ctx, name)
}

type bareCapability mapengine.Name

func (c bareCapability) CapabilityName() mapengine.Name { return mapengine.Name(c) }

func TestController_MistypedLayerCapability(t *testing.T) {
	h := newHarness(t)
	r := registry.New()
	h.engine.Register(r)
	h.loader = capability.NewLoader(overridingResolver{
		Resolver: r,
		name:     mapengine.NameFeatureLayer,
		cap:      bareCapability(mapengine.NameFeatureLayer),
	})
	s := h.session(testManifest())

	var err error
	require.NotPanics(t, func() { err = s.Start(context.Background()) })

	var d *Diagnostic
	require.ErrorAs(t, err, &d)
	assert.Equal(t, StageCapabilities, d.Stage)
	assert.ErrorIs(t, err, capability.ErrCapabilityMissing)
	assert.Equal(t, model.PhaseFailed, s.Phase())
	assert.Empty(t, h.engine.Views())
	assert.Empty(t, h.emitted())
}

func TestController_InvalidWidgetCallback(t *testing.T) {
	h := newHarness(t)
	m := testManifest()
	m.Widgets[0].Options = map[string]any{mapengine.OptionGoToOverride: "zoomSomewhereElse"}
	s := h.session(m)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, model.PhaseReady, s.Phase())

	events := h.emitted()
	require.Len(t, events, 1)
	failure := events[0].Widgets
	require.NotNil(t, failure)
	require.Len(t, failure.Failed, 1)
	assert.Equal(t, model.WidgetEditor, failure.Failed[0].Kind)
	assert.ErrorIs(t, failure.Failed[0].Err, memengine.ErrInvalidOption)
	assert.ElementsMatch(t, []string{
		"locate@top-leading", "layer_list@top-leading", "legend@top-left", "time_slider@manual",
	}, failure.Succeeded)
	assert.Same(t, failure, s.WidgetFailure())

	v := h.engine.LastView()
	assert.Empty(t, v.Docked(model.DockTopRight))
	assert.Len(t, v.Docked(model.DockTopLeading), 2)
	assert.Len(t, v.Docked(model.DockTopLeft), 1)
}

func TestController_LocateOverrideFixesScale(t *testing.T) {
	h := newHarness(t)
	s := h.session(testManifest())
	require.NoError(t, s.Start(context.Background()))

	var locate *memengine.Widget
	for _, d := range s.Widgets().Docked {
		if d.Descriptor.Kind == model.WidgetLocate {
			locate = d.Widget.(*memengine.Widget)
		}
	}
	require.NotNil(t, locate)
	require.NoError(t, locate.Trigger(context.Background(), mapengine.GoToTarget{Center: model.Point{Longitude: 5.9, Latitude: 51.98}}))

	goTos := h.engine.LastView().GoTos()
	require.Len(t, goTos, 1)
	assert.Equal(t, 1500.0, goTos[0].Scale)
}

func TestController_DestroyBeforeReady(t *testing.T) {
	h := newHarness(t, memengine.WithReadyDelay(time.Hour))
	s := h.session(testManifest())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool { return s.View() != nil }, 5*time.Second, time.Millisecond)
	v := h.engine.LastView()

	assert.NotPanics(t, s.Destroy)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrDestroyed)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Destroy")
	}
	assert.Equal(t, model.PhaseDestroyed, s.Phase())
	assert.Nil(t, s.View())
	assert.True(t, v.Detached())
	assert.False(t, h.views.Bound(h.surface.SurfaceID()))
	assert.Empty(t, h.emitted())
}

func TestController_DestroyDuringCapabilityLoad(t *testing.T) {
	h := newHarness(t, memengine.WithResolveDelay(50*time.Millisecond))
	s := h.session(testManifest())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()
	require.Eventually(t, func() bool { return s.Phase() == model.PhaseLoading }, 5*time.Second, time.Millisecond)

	s.Destroy()

	assert.ErrorIs(t, <-errCh, ErrDestroyed)
	assert.Equal(t, model.PhaseDestroyed, s.Phase())
	assert.Nil(t, s.Diagnostic(), "a torn-down session reports no failure")
	assert.Empty(t, h.engine.Views(), "no view may be created after teardown")
	assert.Empty(t, h.emitted())
}

func TestController_DestroyDuringWidgets(t *testing.T) {
	var s *Controller
	h := newHarness(t, memengine.WithWidgetHook(func(name mapengine.Name) {
		if name == mapengine.NameEditor {
			s.Destroy()
		}
	}))
	s = h.session(testManifest())

	err := s.Start(context.Background())

	assert.ErrorIs(t, err, ErrDestroyed)
	assert.Equal(t, model.PhaseDestroyed, s.Phase())
	assert.Equal(t, 1, h.engine.WidgetCount(), "no widget may be constructed after teardown")
	assert.Nil(t, s.Widgets())
	assert.Nil(t, s.View())
	assert.True(t, h.engine.LastView().Detached())
	assert.Zero(t, h.engine.LastView().DockedCount())
	assert.Empty(t, h.emitted())
}

func TestController_DestroyLogsWithSessionLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	h := newHarness(t)
	s := h.session(testManifest())
	require.NoError(t, s.Start(ctx))
	for _, b := range s.Widgets().Bindings {
		waitBinding(t, b)
	}

	s.Destroy()

	out := buf.String()
	assert.Contains(t, out, `"msg":"Map session destroyed."`)
	assert.Contains(t, out, `"session_id":"`+s.ID()+`"`)
}

func TestController_DestroyIsIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, h *harness) *Controller
	}{
		{
			name: "uninitialized",
			setup: func(t *testing.T, h *harness) *Controller {
				return h.session(testManifest())
			},
		},
		{
			name: "ready",
			setup: func(t *testing.T, h *harness) *Controller {
				s := h.session(testManifest())
				require.NoError(t, s.Start(context.Background()))
				return s
			},
		},
		{
			name: "failed",
			setup: func(t *testing.T, h *harness) *Controller {
				m := testManifest()
				m.Map.BasemapID = "nope"
				s := h.session(m)
				require.Error(t, s.Start(context.Background()))
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			s := tt.setup(t, h)

			assert.NotPanics(t, func() {
				s.Destroy()
				s.Destroy()
				s.Destroy()
			})
			assert.Equal(t, model.PhaseDestroyed, s.Phase())
			assert.Nil(t, s.View())
			for _, v := range h.engine.Views() {
				assert.True(t, v.Detached())
			}
			<-s.Done()

			assert.ErrorIs(t, s.Start(context.Background()), ErrDestroyed)
		})
	}
}

func TestController_StartTwice(t *testing.T) {
	h := newHarness(t)
	s := h.session(testManifest())
	require.NoError(t, s.Start(context.Background()))

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
	assert.Len(t, h.emitted(), 1)
}

func TestController_ConcurrentStartEmitsOnce(t *testing.T) {
	h := newHarness(t, memengine.WithReadyDelay(10*time.Millisecond))
	var count atomic.Int32
	s := New(Options{
		Manifest:    testManifest(),
		Surface:     h.surface,
		Loader:      h.loader,
		OnMapLoaded: func(LoadedEvent) { count.Add(1) },
	})

	var wg sync.WaitGroup
	var started atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Start(context.Background()) == nil {
				started.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), started.Load())
	assert.Equal(t, int32(1), count.Load())
	assert.Len(t, h.engine.Views(), 1)
}

func TestController_ReadyFailureKeepsViewUntilDestroy(t *testing.T) {
	renderErr := errors.New("webgl context lost")
	h := newHarness(t, memengine.WithReadyError(renderErr))
	s := h.session(testManifest())

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, renderErr)
	assert.Equal(t, StageReady, s.Diagnostic().Stage)
	assert.Equal(t, model.PhaseFailed, s.Phase())
	assert.Empty(t, h.emitted())

	require.NotNil(t, s.View())
	s.Destroy()
	assert.True(t, h.engine.LastView().Detached())
}

func TestController_SurfaceAlreadyBound(t *testing.T) {
	h := newHarness(t)
	first := h.session(testManifest())
	require.NoError(t, first.Start(context.Background()))

	second := h.session(testManifest())
	err := second.Start(context.Background())

	var bindErr *view.ViewBindError
	require.ErrorAs(t, err, &bindErr)
	assert.ErrorIs(t, err, view.ErrSurfaceBound)
	assert.Equal(t, StageView, second.Diagnostic().Stage)

	first.Destroy()
	third := h.session(testManifest())
	require.NoError(t, third.Start(context.Background()), "a released surface can be bound again")
}

func TestController_UnmountedSurface(t *testing.T) {
	h := newHarness(t)
	h.surface.Unmount()
	s := h.session(testManifest())

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, view.ErrSurfaceNotMounted)
	assert.Equal(t, model.PhaseFailed, s.Phase())
}

func TestController_InvalidManifest(t *testing.T) {
	h := newHarness(t)
	m := testManifest()
	m.Map.Zoom = -1
	s := h.session(m)

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidMapConfig)
	assert.Equal(t, StageConfig, s.Diagnostic().Stage)
	assert.Equal(t, 0, h.engine.ResolveCount(mapengine.NameMap), "nothing is loaded for an invalid manifest")
}

func TestController_LayerOrderIsPreserved(t *testing.T) {
	orders := [][]string{
		{"test", "perceel", "wind"},
		{"wind", "test", "perceel"},
		{"perceel", "wind", "test"},
	}
	for _, order := range orders {
		t.Run(order[0], func(t *testing.T) {
			h := newHarness(t)
			base := testManifest()
			m := testManifest()
			m.Layers = nil
			for _, id := range order {
				l, ok := base.Layer(id)
				require.True(t, ok)
				m.Layers = append(m.Layers, l)
			}
			s := h.session(m)
			require.NoError(t, s.Start(context.Background()))

			var got []string
			for _, l := range h.engine.LastView().Map().Layers() {
				got = append(got, l.ID())
			}
			assert.Equal(t, order, got)
		})
	}
}

func TestController_ManifestIsCopied(t *testing.T) {
	h := newHarness(t)
	m := testManifest()
	s := h.session(m)

	m.Map.BasemapID = "not-a-real-basemap"
	m.Widgets[1].Options[mapengine.OptionGoToOverride] = "broken"

	require.NoError(t, s.Start(context.Background()))
	assert.Nil(t, h.emitted()[0].Widgets)
}

func TestController_SharedLoaderResolvesOnce(t *testing.T) {
	h := newHarness(t)
	for i := range 3 {
		s := h.session(testManifest())
		require.NoError(t, s.Start(context.Background()), "session %d", i)
		s.Destroy()
	}
	for _, name := range mapengine.RequiredNames(testManifest()) {
		assert.Equal(t, 1, h.engine.ResolveCount(name), "capability %s", name)
	}
}

func TestController_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	h := newHarness(t)
	m := testManifest()
	m.Map.BasemapID = "not-a-real-basemap"
	s := New(Options{
		Manifest: m,
		Surface:  h.surface,
		Loader:   h.loader,
		Tracer:   tp.Tracer("test"),
	})
	require.Error(t, s.Start(context.Background()))

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{"session.capabilities", "session.compose", "session.start"}, names)

	ended := recorder.Ended()
	assert.Equal(t, "Error", ended[1].Status().Code.String())
	assert.Equal(t, "Error", ended[2].Status().Code.String())
}

func TestController_Status(t *testing.T) {
	h := newHarness(t)
	s := h.session(testManifest())
	require.NoError(t, s.Start(context.Background()))
	waitBinding(t, s.Widgets().Bindings[0])

	st := s.Status()
	assert.Equal(t, s.ID(), st.SessionID)
	assert.Equal(t, "ready", st.Phase)
	assert.True(t, st.Loaded)
	assert.Equal(t, "viewDiv", st.Surface)
	assert.Nil(t, st.Error)
	assert.Len(t, st.Widgets, 5)
	require.Len(t, st.Bindings, 1)
	assert.Equal(t, "bound", st.Bindings[0].State)
	assert.Equal(t, "2025-03-01T06:00:00Z", st.Bindings[0].Start)

	s.Destroy()
	st = s.Status()
	assert.Equal(t, "destroyed", st.Phase)
	assert.False(t, st.Loaded)
	assert.Empty(t, st.Surface)
}
