package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is a validated speech-to-text payload.
type Response struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// Result selects the formatter input: the segments when any were returned,
// the flat text otherwise.
func (r Response) Result() Result {
	if len(r.Segments) > 0 {
		return Segments(r.Segments)
	}
	return Text(r.Text)
}

// DecodeResponse parses an OpenAI-compatible transcription body. "text" must
// be present and a JSON string. "segments" is optional and ignored unless it
// is an array; each array entry needs a string "text" and numeric "start" and
// "end". Other fields are ignored.
func DecodeResponse(data []byte) (Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	rawText, ok := fields["text"]
	if !ok {
		return Response{}, fmt.Errorf("%w: missing \"text\" field", ErrMalformedResponse)
	}
	text, ok := decodeString(rawText)
	if !ok {
		return Response{}, fmt.Errorf("%w: \"text\" field is not a string", ErrMalformedResponse)
	}

	resp := Response{Text: text}
	if lang, ok := decodeString(fields["language"]); ok {
		resp.Language = lang
	}
	if duration, ok := decodeNumber(fields["duration"]); ok {
		resp.Duration = duration
	}

	rawSegments := bytes.TrimSpace(fields["segments"])
	if len(rawSegments) == 0 || rawSegments[0] != '[' {
		return resp, nil
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(rawSegments, &entries); err != nil {
		return Response{}, fmt.Errorf("%w: segments: %v", ErrMalformedResponse, err)
	}
	resp.Segments = make([]Segment, 0, len(entries))
	for i, entry := range entries {
		seg, err := decodeSegment(entry)
		if err != nil {
			return Response{}, fmt.Errorf("%w: segment %d: %v", ErrMalformedResponse, i, err)
		}
		resp.Segments = append(resp.Segments, seg)
	}
	return resp, nil
}

func decodeSegment(entry map[string]json.RawMessage) (Segment, error) {
	if entry == nil {
		return Segment{}, fmt.Errorf("not an object")
	}
	text, ok := decodeString(entry["text"])
	if !ok {
		return Segment{}, fmt.Errorf("\"text\" missing or not a string")
	}
	start, ok := decodeNumber(entry["start"])
	if !ok {
		return Segment{}, fmt.Errorf("\"start\" missing or not a number")
	}
	end, ok := decodeNumber(entry["end"])
	if !ok {
		return Segment{}, fmt.Errorf("\"end\" missing or not a number")
	}
	return Segment{Text: text, Start: start, End: end}, nil
}

func decodeString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var value string
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return "", false
	}
	return value, true
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == 'n' {
		return 0, false
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, false
	}
	return value, true
}
