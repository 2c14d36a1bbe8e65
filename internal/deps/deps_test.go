package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gotranscribe/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}

	missing := MissingRequired(results)
	if len(missing) != 1 || missing[0] != "Missing" {
		t.Fatalf("unexpected missing list: %v", missing)
	}
}

func TestRequirementsUseConfiguredFFmpeg(t *testing.T) {
	cfg := config.Default()
	cfg.Media.FFmpegBinary = "/opt/ffmpeg/bin/ffmpeg"
	reqs := Requirements(&cfg)
	if len(reqs) != 1 || reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected requirements: %#v", reqs)
	}
	if Requirements(nil)[0].Command != "ffmpeg" {
		t.Fatal("expected default ffmpeg command")
	}
}

func TestFFmpegVersion(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffmpeg")
	script := []byte("#!/bin/sh\necho 'ffmpeg version 7.1-test Copyright'\necho 'built with gcc'\n")
	if err := os.WriteFile(stub, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	version, err := FFmpegVersion(context.Background(), stub)
	if err != nil {
		t.Fatalf("FFmpegVersion: %v", err)
	}
	if version != "ffmpeg version 7.1-test Copyright" {
		t.Fatalf("unexpected version %q", version)
	}
}
