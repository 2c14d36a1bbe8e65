// Package history persists transcription jobs in SQLite.
//
// Every transcription, whether started from the CLI or the HTTP API, is
// recorded as a Job: it is inserted as processing when the pipeline starts and
// finalized as completed, failed, or rejected. Completed jobs keep the raw
// transcript text and the timed segments so any output format can be rendered
// again later without calling the speech-to-text endpoint.
//
// The schema is embedded and versioned. A version mismatch is reported with
// ErrSchemaMismatch instead of being migrated in place; the history is a cache
// of past work and can be cleared.
package history
