// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the lifecycle phases of a map session.
package model

// Phase is the lifecycle phase of a session.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
	PhaseDestroyed
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	case PhaseDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can leave the phase other
// than teardown.
func (p Phase) Terminal() bool {
	return p == PhaseFailed || p == PhaseDestroyed
}
