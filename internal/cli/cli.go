package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/specialistvlad/geoview/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// environment holds the flag defaults read from the process environment.
type environment struct {
	Manifest           []string      `env:"GEOVIEW_MANIFEST" envSeparator:","`
	Engine             string        `env:"GEOVIEW_ENGINE" envDefault:"memory"`
	EngineURL          string        `env:"GEOVIEW_ENGINE_URL"`
	EngineNamespace    string        `env:"GEOVIEW_ENGINE_NAMESPACE" envDefault:"/"`
	InsecureSkipVerify bool          `env:"GEOVIEW_INSECURE_SKIP_VERIFY"`
	APIKey             string        `env:"GEOVIEW_API_KEY"`
	Surface            string        `env:"GEOVIEW_SURFACE" envDefault:"viewDiv"`
	HealthcheckPort    int           `env:"GEOVIEW_HEALTHCHECK_PORT" envDefault:"0"`
	LogFormat          string        `env:"GEOVIEW_LOG_FORMAT" envDefault:"json"`
	LogLevel           string        `env:"GEOVIEW_LOG_LEVEL" envDefault:"info"`
	OtelEndpoint       string        `env:"GEOVIEW_OTEL_ENDPOINT"`
	ResolveTimeout     time.Duration `env:"GEOVIEW_RESOLVE_TIMEOUT" envDefault:"30s"`
	CallTimeout        time.Duration `env:"GEOVIEW_CALL_TIMEOUT" envDefault:"10s"`
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var defaults environment
	if err := env.Parse(&defaults); err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("parse env: %v", err)}
	}

	flagSet := flag.NewFlagSet("geoview", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
GeoView - Runs an interactive map session against a mapping engine.

Usage:
  geoview [options] [MANIFEST_PATH...]

Arguments:
  MANIFEST_PATH
    Path to an .hcl or .yaml file, or a directory containing them. Without
    any path the built-in manifest is used.

Options:
`)
		flagSet.PrintDefaults()
	}

	manifestFlag := flagSet.String("manifest", "", "Path to the manifest file or directory.")
	mFlag := flagSet.String("m", "", "Path to the manifest file or directory (shorthand).")
	engineFlag := flagSet.String("engine", defaults.Engine, "Mapping engine. Options: 'memory' or 'bridge'.")
	engineURLFlag := flagSet.String("engine-url", defaults.EngineURL, "socket.io URL of the remote engine (bridge only).")
	namespaceFlag := flagSet.String("engine-namespace", defaults.EngineNamespace, "socket.io namespace of the remote engine.")
	insecureFlag := flagSet.Bool("insecure-skip-verify", defaults.InsecureSkipVerify, "Skip TLS certificate verification of the remote engine.")
	apiKeyFlag := flagSet.String("api-key", defaults.APIKey, "Engine API key forwarded with capability loads.")
	surfaceFlag := flagSet.String("surface", defaults.Surface, "ID of the element the map view binds to.")
	healthPortFlag := flagSet.Int("healthcheck-port", defaults.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	otelFlag := flagSet.String("otel-endpoint", defaults.OtelEndpoint, "OTLP/HTTP trace endpoint. Empty disables tracing.")
	resolveTimeoutFlag := flagSet.Duration("resolve-timeout", defaults.ResolveTimeout, "Timeout of one capability resolution. 0 waits forever.")
	callTimeoutFlag := flagSet.Duration("call-timeout", defaults.CallTimeout, "Timeout of one remote engine request. 0 waits forever.")
	onceFlag := flagSet.Bool("once", false, "Exit as soon as the map is loaded instead of serving until interrupted.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	switch {
	case *manifestFlag != "":
		paths = append(paths, *manifestFlag)
	case *mFlag != "":
		paths = append(paths, *mFlag)
	}
	paths = append(paths, flagSet.Args()...)
	if len(paths) == 0 {
		paths = defaults.Manifest
	}
	slog.Debug("Manifest paths determined.", "paths", paths)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ManifestPaths:      paths,
		Engine:             strings.ToLower(*engineFlag),
		EngineURL:          *engineURLFlag,
		EngineNamespace:    *namespaceFlag,
		InsecureSkipVerify: *insecureFlag,
		APIKey:             *apiKeyFlag,
		SurfaceID:          *surfaceFlag,
		LogFormat:          logFormat,
		LogLevel:           logLevel,
		HealthcheckPort:    *healthPortFlag,
		OtelEndpoint:       *otelFlag,
		ResolveTimeout:     *resolveTimeoutFlag,
		CallTimeout:        *callTimeoutFlag,
		Once:               *onceFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "engine", config.Engine, "paths", config.ManifestPaths)
	return config, false, nil
}
