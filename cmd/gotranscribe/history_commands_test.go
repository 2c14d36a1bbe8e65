package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"gotranscribe/internal/api"
	"gotranscribe/internal/history"
	"gotranscribe/internal/testsupport"
	"gotranscribe/internal/transcript"
)

func seedCompletedJob(t *testing.T, store *history.Store, source string) *history.Job {
	t.Helper()
	job := testsupport.NewJob(t, store, source)
	err := store.Complete(context.Background(), job.ID, history.Outcome{
		Text:     "First line. Second line.",
		Language: "en",
		Duration: 75,
		Segments: []transcript.Segment{
			{Text: "First line.", Start: 0, End: 1.5},
			{Text: "Second line.", Start: 1.5, End: 3},
		},
	})
	if err != nil {
		t.Fatalf("complete job: %v", err)
	}
	refreshed, err := store.Get(context.Background(), job.ID)
	if err != nil || refreshed == nil {
		t.Fatalf("get job: %v", err)
	}
	return refreshed
}

func TestHistoryListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No transcriptions recorded")
}

func TestHistoryListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	done := seedCompletedJob(t, store, "interview.mp3")
	failed := testsupport.NewJob(t, store, "broken.mov")
	if err := store.Fail(context.Background(), failed.ID, history.StatusFailed, "ffmpeg exited 1"); err != nil {
		t.Fatalf("fail job: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, done.ShortID())
	requireContains(t, out, "interview.mp3")
	requireContains(t, out, "1:15")
	requireContains(t, out, "broken.mov")
	requireContains(t, out, "failed")

	jsonOut, _, err := runCLI(t, []string{"history", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history list --json: %v", err)
	}
	var list api.TranscriptionListResponse
	if err := json.Unmarshal([]byte(jsonOut), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.Items))
	}
	for _, item := range list.Items {
		if item.Text != "" || len(item.Segments) != 0 {
			t.Fatalf("list items should be summaries, got %+v", item)
		}
	}

	show, _, err := runCLI(t, []string{"history", "show", done.ShortID()}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, show, "Source:    interview.mp3")
	requireContains(t, show, "Status:    completed")
	requireContains(t, show, "Segments:  2")
	requireContains(t, show, "First line. Second line.")

	showFailed, _, err := runCLI(t, []string{"history", "show", failed.ID}, env.configPath)
	if err != nil {
		t.Fatalf("history show failed job: %v", err)
	}
	requireContains(t, showFailed, "Error:     ffmpeg exited 1")
}

func TestHistoryShowFormats(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	done := seedCompletedJob(t, store, "lecture.mp4")
	pending := testsupport.NewJob(t, store, "pending.mp4")

	srt, _, err := runCLI(t, []string{"history", "show", done.ID, "--format", "srt"}, env.configPath)
	if err != nil {
		t.Fatalf("show srt: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,500\nFirst line.\n\n2\n00:00:01,500 --> 00:00:03,000\nSecond line.\n"
	if srt != want {
		t.Fatalf("unexpected srt %q", srt)
	}

	txt, _, err := runCLI(t, []string{"history", "show", done.ID, "-f", "txt"}, env.configPath)
	if err != nil {
		t.Fatalf("show txt: %v", err)
	}
	if txt != "First line. Second line.\n" {
		t.Fatalf("unexpected txt %q", txt)
	}

	_, _, err = runCLI(t, []string{"history", "show", pending.ID, "--format", "vtt"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "processing") {
		t.Fatalf("expected processing error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"history", "show", "zzzzzzzz"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestHistoryRemoveAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	first := seedCompletedJob(t, store, "one.wav")
	seedCompletedJob(t, store, "two.wav")
	seedCompletedJob(t, store, "three.wav")

	out, _, err := runCLI(t, []string{"history", "rm", first.ID}, env.configPath)
	if err != nil {
		t.Fatalf("history rm: %v", err)
	}
	requireContains(t, out, "Removed "+first.ShortID()+" (one.wav)")

	if job, err := store.Get(context.Background(), first.ID); err != nil || job != nil {
		t.Fatalf("expected job removed, got %+v err=%v", job, err)
	}

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 2 transcriptions")
}
