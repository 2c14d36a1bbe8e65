package testsupport

import (
	"context"
	"testing"

	"gotranscribe/internal/config"
	"gotranscribe/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a processing job for tests using the provided store.
func NewJob(t testing.TB, store *history.Store, source string) *history.Job {
	t.Helper()

	job, err := store.Create(context.Background(), history.NewJob{Source: source, Model: "whisper-large-v3"})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
