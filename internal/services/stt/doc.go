// Package stt is a client for OpenAI-compatible speech-to-text endpoints
// (Groq by default).
//
// Audio is uploaded as multipart/form-data to <base_url>/audio/transcriptions
// with bearer authentication. Throttling (429), request timeouts (408), and
// server errors are retried with exponential backoff, honouring Retry-After.
// Compressed responses are decoded, and the loosely typed JSON body is parsed
// with transcript.DecodeResponse so a missing or non-textual "text" field
// surfaces as transcript.ErrMalformedResponse.
//
// Errors carry services markers: bad credentials map to ErrConfiguration,
// rejected input to ErrValidation, exhausted retries to ErrTransient.
package stt
