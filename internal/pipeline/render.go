package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"gotranscribe/internal/transcript"
)

// Transcript output formats.
const (
	FormatTXT  = "txt"
	FormatSRT  = "srt"
	FormatVTT  = "vtt"
	FormatJSON = "json"
)

// Formats lists every supported output format in write order.
func Formats() []string {
	return []string{FormatTXT, FormatSRT, FormatVTT, FormatJSON}
}

// ParseFormats splits a comma-separated format list, dropping duplicates.
func ParseFormats(value string) ([]string, error) {
	var formats []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(value, ",") {
		format := strings.ToLower(strings.TrimSpace(part))
		if format == "" || seen[format] {
			continue
		}
		if !isKnownFormat(format) {
			return nil, fmt.Errorf("unknown format %q (want %s)", format, strings.Join(Formats(), ", "))
		}
		seen[format] = true
		formats = append(formats, format)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no output formats given")
	}
	return formats, nil
}

func isKnownFormat(format string) bool {
	for _, known := range Formats() {
		if format == known {
			return true
		}
	}
	return false
}

// Document is the JSON rendering of a transcript.
type Document struct {
	ID       string               `json:"id,omitempty"`
	Source   string               `json:"source,omitempty"`
	Model    string               `json:"model,omitempty"`
	Language string               `json:"language,omitempty"`
	Duration float64              `json:"duration,omitempty"`
	Text     string               `json:"text"`
	Segments []transcript.Segment `json:"segments,omitempty"`
}

// Render produces one output format. text is the raw transcript string from
// the endpoint; result drives the subtitle formats.
func Render(f transcript.Formatter, format, text string, result transcript.Result) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTXT:
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed, nil
		}
		return transcript.PlainText(result), nil
	case FormatSRT:
		return f.ToSRT(result), nil
	case FormatVTT:
		return f.ToVTT(result), nil
	case FormatJSON:
		doc := Document{Text: text, Segments: result.TimedSegments()}
		if doc.Text == "" {
			doc.Text = transcript.PlainText(result)
		}
		return renderDocument(doc)
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

func renderDocument(doc Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcript json: %w", err)
	}
	return string(data), nil
}
