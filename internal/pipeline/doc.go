// Package pipeline runs one transcription end to end.
//
// A run moves through fixed stages, each tagged on the context so log lines
// carry job_id and stage:
//
//	guard → extract → transcribe → validate → format → write
//
// Every run is recorded in the history store. Failures are classified with
// services.FailureStatus so input problems show as "rejected" and upstream
// problems as "failed". Outputs are written atomically under an advisory lock
// on the output directory.
package pipeline
