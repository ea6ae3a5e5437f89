package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/registry"
	"github.com/specialistvlad/geoview/internal/session"
	"github.com/specialistvlad/geoview/internal/telemetry"
)

// onceBindingWait bounds how long a --once run waits for deferred time
// slider bindings before tearing the session down.
const onceBindingWait = 5 * time.Second

// Run executes the main application logic: it starts one map session and
// keeps it alive until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.ServiceName, a.config.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			a.logger.Warn("Tracing shutdown failed.", "error", err)
		}
	}()

	engine, closeEngine, err := a.openEngine(ctx)
	if err != nil {
		return err
	}
	defer closeEngine()

	reg := registry.New()
	engine.Register(reg)
	a.logger.Debug("Engine capabilities registered.", "engine", a.config.Engine, "count", len(reg.Names()))

	loader := capability.Shared(reg, capability.WithResolveTimeout(a.config.ResolveTimeout))
	s := session.New(session.Options{
		Manifest: a.manifest,
		Surface:  engine.Surface(a.config.SurfaceID),
		Loader:   loader,
		Views:    a.views,
		OnMapLoaded: func(ev session.LoadedEvent) {
			a.logger.Info("🗺️ Map loaded.", "session_id", ev.SessionID, "partial_widgets", ev.Widgets != nil)
		},
	})
	a.mu.Lock()
	a.loader = loader
	a.session = s
	a.mu.Unlock()
	defer s.Destroy()

	a.healthCheckServer(ctx)
	defer a.closeHealthCheckServer(ctx)

	if err := s.Start(ctx); err != nil {
		if ctx.Err() != nil || errors.Is(err, session.ErrDestroyed) {
			a.logger.Info("Map session abandoned before it was ready.")
			return nil
		}
		return fmt.Errorf("map session did not load: %w", err)
	}

	if a.config.Once {
		a.awaitBindings(ctx, s)
		a.logger.Info("🏁 Single run finished.")
		return nil
	}

	<-ctx.Done()
	a.logger.Info("Shutting down map session...")
	a.logger.Debug("App.Run method finished.")
	return nil
}

// awaitBindings waits for every deferred time slider binding to settle.
func (a *App) awaitBindings(ctx context.Context, s *session.Controller) {
	res := s.Widgets()
	if res == nil {
		return
	}
	timeout := time.NewTimer(onceBindingWait)
	defer timeout.Stop()
	for _, b := range res.Bindings {
		select {
		case <-b.Done():
			a.logger.Debug("Time slider binding settled.", "layer", b.LayerID, "state", b.State().String())
		case <-timeout.C:
			a.logger.Warn("Time slider binding still pending.", "layer", b.LayerID)
			return
		case <-ctx.Done():
			return
		}
	}
}
