// Package config loads, normalizes, and validates sheaf configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs: key columns for deduplication, the placeholder prefix for column
// stripping, dialect sampling, history persistence, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
