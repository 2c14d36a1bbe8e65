// Package api defines the wire-format types served by the HTTP API daemon. It
// translates history jobs into transport-friendly DTOs so clients never couple
// to internal types.
//
// # Key Types
//
// Transcription: one recorded job with its transcript text and segments.
//
// DaemonStatus: runtime information including job counts, codec state, and
// dependencies.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Job
// statuses are exposed as lowercase strings. Timestamps use RFC3339 with
// milliseconds.
package api
