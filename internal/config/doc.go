// Package config defines the format-agnostic entry point for session
// manifests: the Loader interface implemented by the HCL and YAML packages
// and the built-in default manifest used when no files are given.
package config
