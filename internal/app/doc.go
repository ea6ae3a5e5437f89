// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle: load the
// map manifest, connect an engine, run one map session and serve its health,
// decoupled from any specific entrypoint like a CLI.
package app
