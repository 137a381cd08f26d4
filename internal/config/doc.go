// Package config loads, normalizes, and validates songshift configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and resolves the external tool binaries the pipeline shells out
// to. The Config type centralizes every knob the CLI and pipeline need so the
// output directory, tool paths, and codec bitrates are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
