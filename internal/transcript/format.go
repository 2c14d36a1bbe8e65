package transcript

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// VTTMode selects how ToVTT synthesizes cues for untimed text.
type VTTMode int

const (
	// VTTModeSingle renders untimed text as one cue covering the whole transcript.
	VTTModeSingle VTTMode = iota
	// VTTModeChunked renders untimed text with the same ten-word cues as SRT.
	VTTModeChunked
)

const vttHeader = "WEBVTT"

// String returns the configuration spelling of the mode.
func (m VTTMode) String() string {
	switch m {
	case VTTModeSingle:
		return "single"
	case VTTModeChunked:
		return "chunked"
	default:
		return "VTTMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseVTTMode maps "single" or "chunked" to a VTTMode. Empty input selects
// VTTModeSingle.
func ParseVTTMode(value string) (VTTMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "single":
		return VTTModeSingle, nil
	case "chunked":
		return VTTModeChunked, nil
	default:
		return VTTModeSingle, fmt.Errorf("unknown vtt synthesis mode %q (want single or chunked)", value)
	}
}

// Formatter renders transcription results. The zero value reproduces the
// historical output of ToSRT and ToVTT.
type Formatter struct {
	VTTMode VTTMode
}

// SRTSegments returns the cues ToSRT would render for r.
func (f Formatter) SRTSegments(r Result) []Segment {
	if r.timed {
		return r.segments
	}
	return SynthesizeChunks(r.text)
}

// VTTSegments returns the cues ToVTT would render for r.
func (f Formatter) VTTSegments(r Result) []Segment {
	if r.timed {
		return r.segments
	}
	if f.VTTMode == VTTModeChunked {
		return SynthesizeChunks(r.text)
	}
	return SynthesizeSingle(r.text)
}

// ToSRT renders r as SubRip text.
func (f Formatter) ToSRT(r Result) string {
	return FormatSRT(f.SRTSegments(r))
}

// ToVTT renders r as WebVTT text.
func (f Formatter) ToVTT(r Result) string {
	return FormatVTT(f.VTTSegments(r))
}

// ToSRT renders r as SubRip text using the default Formatter.
func ToSRT(r Result) string {
	return Formatter{}.ToSRT(r)
}

// ToVTT renders r as WebVTT text using the default Formatter.
func ToVTT(r Result) string {
	return Formatter{}.ToVTT(r)
}

// FormatSRT renders numbered SubRip cues starting at 1. An empty sequence
// renders as the empty string.
func FormatSRT(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTime(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTime(seg.End))
		b.WriteByte('\n')
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

// FormatVTT renders a WEBVTT header followed by one cue per segment. An empty
// sequence renders as the bare header.
func FormatVTT(segments []Segment) string {
	var b strings.Builder
	b.WriteString(vttHeader)
	b.WriteString("\n\n")
	for _, seg := range segments {
		b.WriteString(FormatVTTTime(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatVTTTime(seg.End))
		b.WriteByte('\n')
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}
