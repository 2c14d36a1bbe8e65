// Package daemon runs the long-lived gotranscribe API process.
//
// It wires configuration, the history store, and the transcription pipeline
// into a single lifecycle with flock-based locking to prevent multiple
// instances. On start it marks jobs left in "processing" by a previous run as
// failed, then serves the HTTP API.
//
// Keep orchestration logic here: transcription steps live in the pipeline
// package while the daemon focuses on startup, shutdown, and the HTTP surface.
package daemon
