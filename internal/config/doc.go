// Package config loads, normalizes, and validates Billfold configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BILLFOLD_NTFY_TOPIC. The Config type centralizes every knob the daemon and
// CLI need, allowing inbox/library directories and notification settings to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
