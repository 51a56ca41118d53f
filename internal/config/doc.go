// Package config loads, normalizes, and validates clipper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLIPPER_OUTPUT_DIR. The Config type centralizes every knob the CLI and API
// need: where acquisitions land, where burned exports are written, which
// external binaries to invoke, and how the downloader is bootstrapped when it
// is missing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
