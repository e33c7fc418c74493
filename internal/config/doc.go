// Package config loads, normalizes, and validates dfhash configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// DFHASH_LOG_LEVEL. The Config type centralizes every knob the CLI and the
// hashing pipeline need: logging, worker count, delimited-text parsing and
// the optional hash cache.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
