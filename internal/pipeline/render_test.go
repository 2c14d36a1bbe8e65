package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"gotranscribe/internal/transcript"
)

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" SRT, vtt,srt ,, txt")
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	if strings.Join(got, ",") != "srt,vtt,txt" {
		t.Fatalf("unexpected formats %v", got)
	}
	if _, err := ParseFormats("docx"); err == nil {
		t.Fatal("expected unknown format error")
	}
	if _, err := ParseFormats(" , "); err == nil {
		t.Fatal("expected empty list error")
	}
}

func TestRenderFormats(t *testing.T) {
	f := transcript.Formatter{}
	untimed := transcript.Text("one two three")

	txt, err := Render(f, FormatTXT, "  one two three ", untimed)
	if err != nil || txt != "one two three" {
		t.Fatalf("txt: %q %v", txt, err)
	}
	srt, _ := Render(f, FormatSRT, "", untimed)
	if srt != "1\n00:00:00,000 --> 00:00:01,500\none two three" {
		t.Fatalf("srt: %q", srt)
	}
	vtt, _ := Render(f, "VTT", "", untimed)
	if vtt != "WEBVTT\n\n00:00:00.000 --> 00:00:01.500\none two three" {
		t.Fatalf("vtt: %q", vtt)
	}

	timed := transcript.Segments([]transcript.Segment{{Text: "a", Start: 0, End: 1}, {Text: "b", Start: 1, End: 2}})
	txt, _ = Render(f, FormatTXT, "", timed)
	if txt != "a b" {
		t.Fatalf("txt from segments: %q", txt)
	}
	body, err := Render(f, FormatJSON, "", timed)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if doc.Text != "a b" || len(doc.Segments) != 2 {
		t.Fatalf("unexpected doc %+v", doc)
	}

	if _, err := Render(f, "docx", "", timed); err == nil {
		t.Fatal("expected unknown format error")
	}
}
