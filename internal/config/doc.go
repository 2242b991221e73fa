// Package config loads, normalizes, and validates libris configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours LIBRIS_* environment overrides.
// The Config type centralizes every knob the daemon and CLI need so data and
// log directories, the API bind address, and loan limits are discovered in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
