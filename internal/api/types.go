package api

import "gotranscribe/internal/transcript"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Transcription describes a history job in a transport-friendly format.
type Transcription struct {
	ID           string               `json:"id"`
	Source       string               `json:"source"`
	Status       string               `json:"status"`
	Model        string               `json:"model,omitempty"`
	Language     string               `json:"language,omitempty"`
	SizeBytes    int64                `json:"sizeBytes"`
	Duration     float64              `json:"duration,omitempty"`
	Text         string               `json:"text,omitempty"`
	Segments     []transcript.Segment `json:"segments,omitempty"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
	CreatedAt    string               `json:"createdAt,omitempty"`
	UpdatedAt    string               `json:"updatedAt,omitempty"`
	CompletedAt  string               `json:"completedAt,omitempty"`
}

// TranscriptionListResponse wraps a collection of jobs. List entries omit
// transcript text and segments.
type TranscriptionListResponse struct {
	Items []Transcription `json:"items"`
}

// TranscriptionResponse wraps a single job.
type TranscriptionResponse struct {
	Item Transcription `json:"item"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	Address       string             `json:"address,omitempty"`
	HistoryDBPath string             `json:"historyDbPath"`
	LockFilePath  string             `json:"lockFilePath"`
	ActiveJobs    int64              `json:"activeJobs"`
	Codec         string             `json:"codec"`
	Counts        map[string]int     `json:"counts"`
	Dependencies  []DependencyStatus `json:"dependencies"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	JobID string `json:"jobId,omitempty"`
}
