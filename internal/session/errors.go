package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by Start on a session that left
	// PhaseUninitialized.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrDestroyed is returned by Start when the session was torn down
	// before or while it was loading.
	ErrDestroyed = errors.New("session destroyed")
)

// Stage names a step of the initialization sequence.
type Stage string

const (
	StageConfig       Stage = "config"
	StageCapabilities Stage = "capabilities"
	StageCompose      Stage = "compose"
	StageView         Stage = "view"
	StageWidgets      Stage = "widgets"
	StageReady        Stage = "ready"
)

// Diagnostic is the single failure report of a Failed session: which stage
// failed and why.
type Diagnostic struct {
	Stage Stage
	Cause error
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("map session failed at stage '%s': %v", d.Stage, d.Cause)
}

func (d *Diagnostic) Unwrap() error { return d.Cause }
