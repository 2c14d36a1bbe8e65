package transcript

import "strings"

// Segment is a span of transcript text with offsets in seconds from the
// start of the media.
type Segment struct {
	Text  string  `json:"text" yaml:"text"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Result is the formatter input. It holds either raw text without timing or
// an ordered segment sequence; use Text or Segments to build one.
type Result struct {
	text     string
	segments []Segment
	timed    bool
}

// Text wraps a transcript string that carries no timing information.
func Text(text string) Result {
	return Result{text: text}
}

// Segments wraps an ordered segment sequence. The slice is retained, not
// copied, and is only ever read.
func Segments(segments []Segment) Result {
	return Result{segments: segments, timed: true}
}

// HasTiming reports whether the result was built from segments.
func (r Result) HasTiming() bool {
	return r.timed
}

// RawText returns the untimed transcript string ("" for segment results).
func (r Result) RawText() string {
	return r.text
}

// TimedSegments returns the segments a result was built from.
func (r Result) TimedSegments() []Segment {
	return r.segments
}

// PlainText renders the transcript as plain text. Raw text is returned as
// given; segment texts are trimmed and joined with single spaces.
func PlainText(r Result) string {
	if !r.timed {
		return r.text
	}
	parts := make([]string, 0, len(r.segments))
	for _, seg := range r.segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
