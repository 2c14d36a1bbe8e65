package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeResponseWithSegments(t *testing.T) {
	body := []byte(`{
		"task": "transcribe",
		"language": "english",
		"duration": 2.5,
		"text": " hello world",
		"segments": [
			{"id": 0, "seek": 0, "start": 0.0, "end": 1.2, "text": " hello", "tokens": [1, 2]},
			{"id": 1, "seek": 0, "start": 1.2, "end": 2.5, "text": " world"}
		]
	}`)
	resp, err := DecodeResponse(body)
	if err != nil {
		t.Fatalf("DecodeResponse returned error: %v", err)
	}
	if resp.Text != " hello world" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Language != "english" || resp.Duration != 2.5 {
		t.Fatalf("unexpected metadata %+v", resp)
	}
	if len(resp.Segments) != 2 || resp.Segments[1].Start != 1.2 || resp.Segments[1].Text != " world" {
		t.Fatalf("unexpected segments %+v", resp.Segments)
	}
	if !resp.Result().HasTiming() {
		t.Fatal("expected segment result")
	}
}

func TestDecodeResponseTextOnly(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"text":"just words"}`))
	if err != nil {
		t.Fatalf("DecodeResponse returned error: %v", err)
	}
	r := resp.Result()
	if r.HasTiming() || r.RawText() != "just words" {
		t.Fatalf("expected text result, got %+v", r)
	}
}

func TestDecodeResponseIgnoresNonArraySegments(t *testing.T) {
	for _, body := range []string{
		`{"text":"a","segments":null}`,
		`{"text":"a","segments":"nope"}`,
		`{"text":"a","segments":{"0":{}}}`,
	} {
		resp, err := DecodeResponse([]byte(body))
		if err != nil {
			t.Fatalf("DecodeResponse(%s) returned error: %v", body, err)
		}
		if len(resp.Segments) != 0 {
			t.Fatalf("DecodeResponse(%s) kept segments %+v", body, resp.Segments)
		}
	}
}

func TestDecodeResponseEmptySegmentsFallsBackToText(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"text":"fallback","segments":[]}`))
	if err != nil {
		t.Fatalf("DecodeResponse returned error: %v", err)
	}
	if resp.Result().HasTiming() {
		t.Fatal("expected empty segments to select the text result")
	}
}

func TestDecodeResponseMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `text=hello`,
		"array":            `["hello"]`,
		"null":             `null`,
		"missing text":     `{"segments":[]}`,
		"null text":        `{"text":null}`,
		"numeric text":     `{"text":42}`,
		"segment no start": `{"text":"a","segments":[{"text":"a","end":1}]}`,
		"segment bad text": `{"text":"a","segments":[{"text":7,"start":0,"end":1}]}`,
		"segment string":   `{"text":"a","segments":[{"text":"a","start":"0","end":1}]}`,
		"segment scalar":   `{"text":"a","segments":[3]}`,
		"segment null":     `{"text":"a","segments":[null]}`,
	}
	for name, body := range cases {
		if _, err := DecodeResponse([]byte(body)); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%s: expected ErrMalformedResponse, got %v", name, err)
		}
	}
}

func TestValidateSegments(t *testing.T) {
	valid := []Segment{{Text: "a", Start: 0, End: 0}, {Text: "b", Start: 0.5, End: 2}}
	if err := ValidateSegments(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invalid := [][]Segment{
		{{Text: "neg", Start: -1, End: 1}},
		{{Text: "ok", Start: 0, End: 1}, {Text: "backwards", Start: 3, End: 2}},
	}
	for _, segs := range invalid {
		if err := ValidateSegments(segs); !errors.Is(err, ErrInvalidSegment) {
			t.Fatalf("expected ErrInvalidSegment for %+v, got %v", segs, err)
		}
	}
}

func TestLoadSegmentsFileFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"bare.json": `[{"text":"a","start":0,"end":1},{"text":"b","start":1,"end":2}]`,
		"doc.json":  `{"text":"a b","segments":[{"text":"a","start":0,"end":1},{"text":"b","start":1,"end":2}]}`,
		"bare.yaml": "- text: a\n  start: 0\n  end: 1\n- text: b\n  start: 1\n  end: 2\n",
		"doc.yml":   "text: a b\nsegments:\n  - {text: a, start: 0, end: 1}\n  - {text: b, start: 1, end: 2}\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		resp, err := LoadSegmentsFile(path)
		if err != nil {
			t.Fatalf("LoadSegmentsFile(%s): %v", name, err)
		}
		if len(resp.Segments) != 2 || resp.Segments[1].Text != "b" || resp.Segments[1].End != 2 {
			t.Fatalf("%s: unexpected segments %+v", name, resp.Segments)
		}
		if resp.Text != "a b" {
			t.Fatalf("%s: unexpected text %q", name, resp.Text)
		}
	}
}

func TestLoadSegmentsFileRejectsInvalidTiming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"text":"a","start":2,"end":1}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSegmentsFile(path); !errors.Is(err, ErrInvalidSegment) {
		t.Fatalf("expected ErrInvalidSegment, got %v", err)
	}
}

func TestParseSegmentsYAMLScalar(t *testing.T) {
	if _, err := ParseSegments([]byte("just a string\n"), "yaml"); err == nil {
		t.Fatal("expected error for scalar yaml document")
	}
}
