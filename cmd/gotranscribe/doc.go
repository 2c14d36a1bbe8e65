// Command gotranscribe turns short audio and video clips into plain text, SRT,
// and VTT transcripts.
//
// Subcommands:
//   - transcribe: extract audio, call the speech-to-text endpoint, write outputs
//   - format: render text or a segment file as srt/vtt/txt/json without any network call
//   - history: list, show, remove, and clear recorded transcriptions
//   - serve: run the HTTP API daemon
//   - status: report configuration, dependencies, and daemon state
//   - logs: show or follow the log file, optionally for one job
//   - config: create or validate the configuration file
package main
