// Package transcript converts speech-to-text output into subtitle text.
//
// A Result carries either a flat transcript string or an ordered list of
// timed segments. ToSRT and ToVTT render either form; when no timing is
// available the package synthesizes it at half a second per word. The VTT
// path keeps the historical single-cue synthesis unless a Formatter is
// configured with VTTModeChunked.
//
// Everything here is a pure function over its input. Segments passed in are
// never modified or reordered, so the same input always renders the same
// bytes and callers may format concurrently without coordination.
//
// DecodeResponse validates the loosely shaped JSON returned by
// OpenAI-compatible transcription endpoints before it reaches the formatter.
package transcript
