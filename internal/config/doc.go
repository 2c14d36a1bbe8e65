// Package config loads, normalizes, and validates gotranscribe configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GROQ_API_KEY. The Config type centralizes every knob the CLI and the API
// daemon need so the speech-to-text endpoint, upload limits, and output
// locations are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical language tags, and clear validation errors.
package config
