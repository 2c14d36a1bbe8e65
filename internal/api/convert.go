package api

import (
	"time"

	"gotranscribe/internal/deps"
	"gotranscribe/internal/history"
)

// FromJob converts a history job to its API representation. Summary entries
// drop the transcript body.
func FromJob(job *history.Job, summary bool) Transcription {
	if job == nil {
		return Transcription{}
	}
	dto := Transcription{
		ID:           job.ID,
		Source:       job.Source,
		Status:       string(job.Status),
		Model:        job.Model,
		Language:     job.Language,
		SizeBytes:    job.SizeBytes,
		Duration:     job.Duration,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    formatTime(job.CreatedAt),
		UpdatedAt:    formatTime(job.UpdatedAt),
	}
	if job.CompletedAt != nil {
		dto.CompletedAt = formatTime(*job.CompletedAt)
	}
	if !summary {
		dto.Text = job.Text
		dto.Segments = job.Segments
	}
	return dto
}

// FromJobs converts a slice of jobs to summaries.
func FromJobs(jobs []*history.Job) []Transcription {
	out := make([]Transcription, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		out = append(out, FromJob(job, true))
	}
	return out
}

// CountsByStatus converts store counts to a map keyed by status name, with a
// zero entry for every known status.
func CountsByStatus(counts map[history.Status]int) map[string]int {
	out := make(map[string]int, len(history.AllStatuses()))
	for _, status := range history.AllStatuses() {
		out[string(status)] = counts[status]
	}
	return out
}

// FromDependencies converts binary checks to their API representation.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Path:        dep.Path,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
