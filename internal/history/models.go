package history

import (
	"time"

	"gotranscribe/internal/transcript"
)

// Status is the lifecycle state of a transcription job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	// StatusRejected marks input the user has to fix (size, type, bad segments).
	StatusRejected Status = "rejected"
)

// AllStatuses lists statuses in display order.
func AllStatuses() []Status {
	return []Status{StatusProcessing, StatusCompleted, StatusFailed, StatusRejected}
}

// IsTerminal reports whether the job has finished.
func (s Status) IsTerminal() bool {
	return s != StatusProcessing
}

// Job is one recorded transcription.
type Job struct {
	ID           string
	Source       string
	Status       Status
	Model        string
	Language     string
	SizeBytes    int64
	Text         string
	Segments     []transcript.Segment
	Duration     float64
	OutputDir    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// NewJob describes a job about to start.
type NewJob struct {
	ID        string
	Source    string
	Model     string
	Language  string
	SizeBytes int64
	OutputDir string
}

// Outcome is what a successful transcription stores.
type Outcome struct {
	Text     string
	Language string
	Duration float64
	Segments []transcript.Segment
}

// Result returns the formatter input for the job: its timed segments when
// present, otherwise the raw text.
func (j *Job) Result() transcript.Result {
	if len(j.Segments) > 0 {
		return transcript.Segments(j.Segments)
	}
	return transcript.Text(j.Text)
}

// ShortID returns the first eight characters of the job identifier.
func (j *Job) ShortID() string {
	if len(j.ID) > 8 {
		return j.ID[:8]
	}
	return j.ID
}
