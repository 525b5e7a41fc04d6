// Package config loads zyro.yaml documents and turns them into a validated
// RootConfig.
//
// LoadFile reads the YAML file into an untyped mapping, FromMap applies
// defaults, normalizes paths and reports every schema violation with its
// dotted location. ConfigHasher fingerprints a validated config and Watcher
// reports file changes for hot reload.
package config
