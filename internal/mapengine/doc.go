// Package mapengine defines the abstract capability interface between the
// session orchestrator and a mapping engine.
//
// The orchestrator never renders anything itself. Everything it builds (maps,
// views, layers, widgets) comes from capabilities: named constructors that a
// capability loader resolves at runtime. A concrete engine is any set of
// capability values registered under the names declared here; the modules/
// tree holds an in-process simulation and a remote bridge.
//
// Handles returned by capabilities are opaque to the orchestrator beyond the
// small interfaces in this package.
package mapengine
