package preflight

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotranscribe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected pass for 1 byte, got %s", result.Detail)
	}
	if result := CheckFreeSpace("space", dir, math.MaxUint64); result.Passed {
		t.Fatal("expected failure for impossible requirement")
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "missing"), 1); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckEndpoint(context.Background(), srv.URL+"/v1/", "good-key"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	result := CheckEndpoint(context.Background(), srv.URL+"/v1", "bad-key")
	if result.Passed || !strings.Contains(result.Detail, "auth failed") {
		t.Fatalf("expected auth failure, got %#v", result)
	}
	if result := CheckEndpoint(context.Background(), "", "k"); result.Passed {
		t.Fatal("expected missing url failure")
	}
	if result := CheckEndpoint(context.Background(), srv.URL, ""); result.Passed {
		t.Fatal("expected missing key failure")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg)
	if len(results) < 6 {
		t.Fatalf("expected directory, space, key, and binary checks, got %d", len(results))
	}
	for _, result := range results {
		if result.Name == "Work directory space" {
			continue
		}
		if !result.Passed {
			t.Fatalf("expected %s to pass: %s", result.Name, result.Detail)
		}
	}

	cfg.Transcription.APIKey = ""
	failed := Failed(RunAll(context.Background(), cfg))
	found := false
	for _, result := range failed {
		if result.Name == "API key" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected API key check to fail")
	}
	if err := Err(failed); err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("expected folded error, got %v", err)
	}
	if Err(nil) != nil {
		t.Fatal("expected nil error for no failures")
	}
}
