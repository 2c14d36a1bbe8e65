package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type segmentDocument struct {
	Text     string    `json:"text" yaml:"text"`
	Language string    `json:"language" yaml:"language"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

// LoadSegmentsFile reads a transcript from a .json, .yaml, or .yml file. The
// file may hold a bare segment list or an object with "text" and "segments".
// Loaded segments are validated with ValidateSegments.
func LoadSegmentsFile(path string) (Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Response{}, fmt.Errorf("read segments file: %w", err)
	}
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	default:
		format = "json"
	}
	resp, err := ParseSegments(data, format)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return resp, nil
}

// ParseSegments decodes a segment document in the given format ("json" or "yaml").
func ParseSegments(data []byte, format string) (Response, error) {
	var (
		doc segmentDocument
		err error
	)
	switch format {
	case "json":
		doc, err = parseJSONSegments(data)
	case "yaml":
		doc, err = parseYAMLSegments(data)
	default:
		return Response{}, fmt.Errorf("unsupported segments format %q", format)
	}
	if err != nil {
		return Response{}, err
	}
	if err := ValidateSegments(doc.Segments); err != nil {
		return Response{}, err
	}
	resp := Response{Text: doc.Text, Language: doc.Language, Segments: doc.Segments}
	if resp.Text == "" && len(resp.Segments) > 0 {
		resp.Text = PlainText(Segments(resp.Segments))
	}
	return resp, nil
}

func parseJSONSegments(data []byte) (segmentDocument, error) {
	var doc segmentDocument
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return doc, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Segments); err != nil {
			return doc, fmt.Errorf("parse segments json: %w", err)
		}
		return doc, nil
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return doc, fmt.Errorf("parse segments json: %w", err)
	}
	return doc, nil
}

func parseYAMLSegments(data []byte) (segmentDocument, error) {
	var doc segmentDocument
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return doc, fmt.Errorf("parse segments yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return doc, nil
	}
	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&doc.Segments); err != nil {
			return doc, fmt.Errorf("parse segments yaml: %w", err)
		}
	case yaml.MappingNode:
		if err := node.Decode(&doc); err != nil {
			return doc, fmt.Errorf("parse segments yaml: %w", err)
		}
	default:
		return doc, fmt.Errorf("parse segments yaml: expected a list or mapping, got %s", node.Tag)
	}
	return doc, nil
}
