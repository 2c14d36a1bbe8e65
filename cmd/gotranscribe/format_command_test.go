package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatTextToSRT(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, _, err := runCLI(t, []string{"format", "--text", "Hello world this is a test", "--to", "srt"}, "")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:03,000\nHello world this is a test\n"
	if out != want {
		t.Fatalf("unexpected srt %q", out)
	}
}

func TestFormatTextVTTModes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	words := strings.TrimSpace(strings.Repeat("word ", 12))

	single, _, err := runCLI(t, []string{"format", "--text", words, "--to", "vtt"}, "")
	if err != nil {
		t.Fatalf("format single: %v", err)
	}
	if strings.Count(single, "-->") != 1 {
		t.Fatalf("expected one cue, got %q", single)
	}
	requireContains(t, single, "00:00:00.000 --> 00:00:06.000")

	chunked, _, err := runCLI(t, []string{"format", "--text", words, "--to", "vtt", "--vtt-synthesis", "chunked"}, "")
	if err != nil {
		t.Fatalf("format chunked: %v", err)
	}
	if strings.Count(chunked, "-->") != 2 {
		t.Fatalf("expected two cues, got %q", chunked)
	}
	requireContains(t, chunked, "00:00:05.000 --> 00:00:06.000\nword word")
}

func TestFormatSegmentsFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "segments.yaml")
	doc := "segments:\n" +
		"  - text: Intro\n    start: 0\n    end: 1.25\n" +
		"  - text: Outro\n    start: 61\n    end: 62.5\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write segments: %v", err)
	}

	out, _, err := runCLI(t, []string{"format", "--segments", path, "--to", "vtt"}, "")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "WEBVTT\n\n00:00:00.000 --> 00:00:01.250\nIntro\n\n00:01:01.000 --> 00:01:02.500\nOutro\n"
	if out != want {
		t.Fatalf("unexpected vtt %q", out)
	}
}

func TestFormatRejectsInvalidSegments(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"text":"x","start":2,"end":1}]`), 0o644); err != nil {
		t.Fatalf("write segments: %v", err)
	}
	if _, _, err := runCLI(t, []string{"format", "--segments", path}, ""); err == nil {
		t.Fatal("expected invalid segment error")
	}
}

func TestFormatReadsStdinAndWritesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "out.srt")

	_, stderr, err := runCLIWithInput(t, []string{"format", "--output", target}, "", "one two three\n")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	requireContains(t, stderr, "Wrote "+target)
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "1\n00:00:00,000 --> 00:00:01,500\none two three" {
		t.Fatalf("unexpected file content %q", data)
	}
}

func TestFormatEmptyInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, _, err := runCLI(t, []string{"format", "--text", "   ", "--to", "vtt"}, "")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if out != "WEBVTT\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFormatFlagErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := map[string][]string{
		"both inputs":  {"format", "--text", "a", "--segments", "x.json"},
		"bad format":   {"format", "--text", "a", "--to", "docx"},
		"bad vtt mode": {"format", "--text", "a", "--to", "vtt", "--vtt-synthesis", "wordy"},
		"missing file": {"format", "--segments", filepath.Join(t.TempDir(), "none.json")},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := runCLI(t, args, ""); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}
