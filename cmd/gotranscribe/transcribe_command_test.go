package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gotranscribe/internal/testsupport"
)

func TestTranscribeWritesOutputs(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteMedia(t, env.baseDir, "demo clip.mp4", 128)
	outDir := filepath.Join(env.baseDir, "out")

	out, _, err := runCLI(t, []string{"transcribe", source, "--out", outDir, "--formats", "srt,vtt,txt"}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	requireContains(t, out, "Transcribed demo clip.mp4")
	requireContains(t, out, filepath.Join(outDir, "demo clip.srt"))

	srt := testsupport.ReadFile(t, filepath.Join(outDir, "demo clip.srt"))
	want := "1\n00:00:00,000 --> 00:00:02,500\n Welcome to the demo.\n\n2\n00:00:02,500 --> 00:00:04,500\n Thanks for watching."
	if srt != want {
		t.Fatalf("srt mismatch:\n%q\nwant\n%q", srt, want)
	}
	txt := testsupport.ReadFile(t, filepath.Join(outDir, "demo clip.txt"))
	if txt != "Welcome to the demo. Thanks for watching." {
		t.Fatalf("unexpected txt %q", txt)
	}
	vtt := testsupport.ReadFile(t, filepath.Join(outDir, "demo clip.vtt"))
	requireContains(t, vtt, "WEBVTT\n\n00:00:00.000 --> 00:00:02.500")

	if env.requests.Load() != 1 {
		t.Fatalf("expected one endpoint call, got %d", env.requests.Load())
	}

	list, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, list, "demo clip.mp4")
	requireContains(t, list, "completed")
	requireContains(t, list, "0:05")
}

func TestTranscribeJSONAndCopy(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteMedia(t, env.baseDir, "memo.m4a", 16)

	var copied string
	original := clipboardWrite
	clipboardWrite = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { clipboardWrite = original })

	out, _, err := runCLI(t, []string{"transcribe", source, "--no-files", "--copy", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	var result transcribeResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, out)
	}
	if result.Transcription.Status != "completed" || len(result.Transcription.Segments) != 2 {
		t.Fatalf("unexpected transcription %+v", result.Transcription)
	}
	if len(result.Files) != 0 {
		t.Fatalf("expected no files with --no-files, got %v", result.Files)
	}
	if !result.Copied || copied != "Welcome to the demo. Thanks for watching." {
		t.Fatalf("unexpected clipboard state copied=%v text=%q", result.Copied, copied)
	}
}

func TestTranscribeClipboardFailureIsWarning(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteMedia(t, env.baseDir, "memo.wav", 16)

	original := clipboardWrite
	clipboardWrite = func(string) error { return errors.New("no clipboard utility") }
	t.Cleanup(func() { clipboardWrite = original })

	out, stderr, err := runCLI(t, []string{"transcribe", source, "--no-files", "--copy"}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	requireContains(t, stderr, "copy to clipboard failed")
	requireContains(t, out, "Welcome to the demo. Thanks for watching.")
}

func TestTranscribeRejectsUnsupportedFile(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteMedia(t, env.baseDir, "slides.pdf", 16)

	_, stderr, err := runCLI(t, []string{"transcribe", source}, env.configPath)
	if err == nil {
		t.Fatal("expected unsupported type error")
	}
	requireContains(t, err.Error(), "unsupported file type")
	requireContains(t, stderr, "rejected")
	if env.requests.Load() != 0 {
		t.Fatal("endpoint should not be called for rejected input")
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Transcription.APIKey = ""
	writeTestConfig(t, env.configPath, env.cfg)
	source := testsupport.WriteMedia(t, env.baseDir, "memo.mp3", 16)

	_, _, err := runCLI(t, []string{"transcribe", source}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "GROQ_API_KEY") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestTranscribeRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteMedia(t, env.baseDir, "memo.mp3", 16)

	if _, _, err := runCLI(t, []string{"transcribe", source, "--formats", "docx"}, env.configPath); err == nil {
		t.Fatal("expected format error")
	}
	if _, _, err := runCLI(t, []string{"transcribe", source, "--language", "not a tag!"}, env.configPath); err == nil {
		t.Fatal("expected language error")
	}
}
