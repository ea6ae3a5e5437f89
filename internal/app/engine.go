package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/registry"
	"github.com/specialistvlad/geoview/modules/bridge"
	"github.com/specialistvlad/geoview/modules/memengine"
)

// Engine is a mapping engine the app can run a session on.
type Engine interface {
	registry.Module
	// Surface returns the mounted surface with the given element ID.
	Surface(id string) mapengine.Surface
}

// forecastHorizon and forecastStep shape the time dimension the memory
// engine gives image service layers.
const (
	forecastHorizon = 48 * time.Hour
	forecastStep    = time.Hour
)

// openEngine builds the configured engine. The returned close function
// releases its connection and is never nil.
func (a *App) openEngine(ctx context.Context) (Engine, func(), error) {
	if a.engine != nil {
		return a.engine, func() {}, nil
	}
	switch a.config.Engine {
	case EngineBridge:
		t, err := bridge.Dial(ctx, bridge.DialOptions{
			URL:                a.config.EngineURL,
			Namespace:          a.config.EngineNamespace,
			InsecureSkipVerify: a.config.InsecureSkipVerify,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to remote engine: %w", err)
		}
		client := bridge.NewClient(t, a.config.CallTimeout)
		return &bridge.Module{Client: client, APIKey: a.config.APIKey}, client.Close, nil
	default:
		e := memengine.New(
			memengine.WithAPIKey(a.config.APIKey),
			memengine.WithTimeInfo(memengine.ForecastTimeInfo(time.Now(), forecastHorizon, forecastStep)),
		)
		return e, func() {}, nil
	}
}
