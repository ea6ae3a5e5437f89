package app

import (
	"errors"
	"fmt"
	"time"
)

// Engine selectors.
const (
	EngineMemory = "memory"
	EngineBridge = "bridge"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ManifestPaths are HCL or YAML files and directories. Empty means the
	// built-in manifest.
	ManifestPaths []string

	Engine             string
	EngineURL          string
	EngineNamespace    string
	InsecureSkipVerify bool
	APIKey             string
	// SurfaceID is the element the view binds to.
	SurfaceID string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	OtelEndpoint    string

	// ResolveTimeout bounds one capability resolution.
	ResolveTimeout time.Duration
	// CallTimeout bounds one remote engine request.
	CallTimeout time.Duration
	// Once tears the session down as soon as it is ready instead of serving
	// until cancelled.
	Once bool
}

func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Engine {
	case "":
		cfg.Engine = EngineMemory
	case EngineMemory:
	case EngineBridge:
		if cfg.EngineURL == "" {
			return nil, errors.New("EngineURL is required for the bridge engine")
		}
	default:
		return nil, fmt.Errorf("unknown engine '%s': must be '%s' or '%s'", cfg.Engine, EngineMemory, EngineBridge)
	}
	if cfg.SurfaceID == "" {
		return nil, errors.New("SurfaceID is a required configuration field and cannot be empty")
	}
	if cfg.HealthcheckPort < 0 {
		return nil, fmt.Errorf("invalid HealthcheckPort %d", cfg.HealthcheckPort)
	}
	if cfg.ResolveTimeout < 0 || cfg.CallTimeout < 0 {
		return nil, errors.New("timeouts cannot be negative")
	}
	return &cfg, nil
}
