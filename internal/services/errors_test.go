package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gotranscribe/internal/history"
	"gotranscribe/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureStatusMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "upload", "guard", "too large", nil)
	if status := services.FailureStatus(validationErr); status != history.StatusRejected {
		t.Fatalf("expected rejected for validation error, got %s", status)
	}

	transientErr := services.Wrap(services.ErrTransient, "transcribe", "request", "503", errors.New("io"))
	if status := services.FailureStatus(transientErr); status != history.StatusFailed {
		t.Fatalf("expected failed for transient error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != history.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrValidation, "guard", "size", "too large", nil), "validation"},
		{services.Wrap(services.ErrConfiguration, "transcribe", "auth", "401", nil), "configuration"},
		{services.Wrap(services.ErrTimeout, "transcribe", "request", "deadline", nil), "timeout"},
		{services.Wrap(services.ErrTransient, "transcribe", "request", "503", nil), "transient"},
		{services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", "exit 1", nil), "external_tool"},
		{fmt.Errorf("outer: %w", services.ErrNotFound), "not_found"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
