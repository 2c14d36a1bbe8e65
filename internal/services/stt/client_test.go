package stt

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gotranscribe/internal/services"
	"gotranscribe/internal/transcript"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFFfake-wave"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeSendsMultipartForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/openai/v1/audio/transcriptions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3" {
			t.Errorf("unexpected model %q", got)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("unexpected response_format %q", got)
		}
		if got := r.FormValue("language"); got != "de" {
			t.Errorf("unexpected language %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			if header.Filename != "audio.wav" || string(data) != "RIFFfake-wave" {
				t.Errorf("unexpected upload %s %q", header.Filename, data)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"Hallo Welt","language":"german","duration":2.5,"segments":[{"id":0,"text":" Hallo Welt","start":0,"end":2.5}]}`)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL + "/openai/v1/", Language: "en"})
	resp, err := client.Transcribe(context.Background(), Request{AudioPath: writeAudio(t), Language: "de"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "Hallo Welt" || resp.Duration != 2.5 || len(resp.Segments) != 1 {
		t.Fatalf("unexpected response %#v", resp)
	}
	if !resp.Result().HasTiming() {
		t.Fatal("expected timed result")
	}
}

func TestTranscribeDecodesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			t.Errorf("expected gzip to be accepted")
		}
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(`{"text":"compressed"}`))
		_ = gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, ResponseFormat: "json"})
	resp, err := client.Transcribe(context.Background(), Request{AudioPath: writeAudio(t)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "compressed" || resp.Result().HasTiming() {
		t.Fatalf("unexpected response %#v", resp)
	}
}

func TestTranscribeRetriesThrottling(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error":"rate limited"}`)
			return
		}
		_, _ = io.WriteString(w, `{"text":"third time"}`)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL},
		WithRetryMaxAttempts(3),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	resp, err := client.Transcribe(context.Background(), Request{AudioPath: writeAudio(t)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "third time" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
	if len(slept) != 2 || slept[0] != time.Second {
		t.Fatalf("expected Retry-After sleeps, got %v", slept)
	}
}

func TestTranscribeRetriesDroppedConnection(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = io.Copy(io.Discard, r.Body)
			hijacker, ok := w.(http.Hijacker)
			if !ok {
				t.Errorf("response writer cannot hijack")
				return
			}
			conn, _, err := hijacker.Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			_ = conn.Close()
			return
		}
		_, _ = io.WriteString(w, `{"text":"reconnected"}`)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL},
		WithRetryMaxAttempts(3),
		WithRetryBackoff(10*time.Millisecond, time.Second),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	resp, err := client.Transcribe(context.Background(), Request{AudioPath: writeAudio(t)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "reconnected" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if calls.Load() != 2 || len(slept) != 1 {
		t.Fatalf("expected one retry, got %d calls and sleeps %v", calls.Load(), slept)
	}
}

func TestTranscribeRetriesRefusedConnection(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	attempts := 0
	client := NewClient(Config{APIKey: "k", BaseURL: baseURL},
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) { attempts++ }),
	)
	_, err := client.Transcribe(context.Background(), Request{AudioPath: writeAudio(t)})
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", attempts)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error after retries, got %v", err)
	}
}

func TestTranscribeSurfacesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"file must be audio"}}`)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	_, err := client.Transcribe(context.Background(), Request{AudioPath: writeAudio(t)})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `transcription request failed: 400 Bad Request. {"error":{"message":"file must be audio"}}`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if StatusCode(err) != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", StatusCode(err))
	}
}

func TestTranscribeClassifiesFailures(t *testing.T) {
	cases := []struct {
		status int
		marker error
	}{
		{http.StatusUnauthorized, services.ErrConfiguration},
		{http.StatusNotFound, services.ErrConfiguration},
		{http.StatusServiceUnavailable, services.ErrTransient},
		{http.StatusTeapot, services.ErrExternalTool},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, WithRetryMaxAttempts(2), WithSleeper(func(time.Duration) {}))
		_, err := client.Transcribe(context.Background(), Request{AudioPath: writeAudio(t)})
		server.Close()
		if !errors.Is(err, tc.marker) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.marker, err)
		}
	}
}

func TestTranscribeMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"segments":[]}`)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Transcribe(context.Background(), Request{AudioPath: writeAudio(t)})
	if !errors.Is(err, transcript.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestTranscribeRequiresKeyAndAudio(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Transcribe(context.Background(), Request{AudioPath: "x"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	client = NewClient(Config{APIKey: "k"})
	if _, err := client.Transcribe(context.Background(), Request{AudioPath: filepath.Join(t.TempDir(), "missing.wav")}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if client.Model() != "whisper-large-v3" {
		t.Fatalf("unexpected default model %q", client.Model())
	}
}

func TestBackoffDelay(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: got %s want %s", i+1, got, expected)
		}
	}
}
