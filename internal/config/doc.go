// Package config loads, normalizes, and validates tapeshelf configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TAPESHELF_CATALOG and TAPESHELF_SESSIONS_URL. The Config type centralizes
// every knob the exporter and the CLI utilities need, so the catalog, the
// audio and output roots, and the encoder settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
