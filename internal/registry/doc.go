// Package registry provides the central "glue" between capability names and
// the engine code that provides them.
//
// Engine modules (see the modules/ tree) register one Provider per
// capability name during application startup. The capability loader then
// resolves names through the registry. A registry is populated once and
// validated against the names the session manifest needs, so a mismatch
// between configured widgets and compiled-in engine support is reported
// before a session starts rather than in the middle of one.
package registry
