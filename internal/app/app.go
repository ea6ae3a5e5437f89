package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/config"
	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/model"
	"github.com/specialistvlad/geoview/internal/session"
	"github.com/specialistvlad/geoview/internal/view"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	manifest *model.Manifest
	engine   Engine
	// views is the surface binding table every session of the process
	// shares.
	views *view.Manager

	mu         sync.Mutex
	loader     *capability.Loader
	session    *session.Controller
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the manifest
// through loader, falling back to the built-in one when no paths are
// configured. A nil engine means the one named by the configuration, opened
// when Run starts.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, engine Engine) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	manifest := config.Default()
	if len(appConfig.ManifestPaths) > 0 {
		var err error
		manifest, err = loader.Load(ctx, appConfig.ManifestPaths...)
		if err != nil {
			// A failure to load config is a fatal startup error.
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		logger.Debug("Manifest loaded.", "paths", appConfig.ManifestPaths)
	} else {
		logger.Debug("No manifest paths configured, using the built-in manifest.")
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		manifest: manifest,
		engine:   engine,
		views:    view.NewManager(),
	}
}

// Manifest returns the loaded manifest. This is primarily for testing.
func (a *App) Manifest() *model.Manifest {
	return a.manifest
}

// Session returns the current map session, or nil before Run created it.
func (a *App) Session() *session.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}
