package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gotranscribe/internal/transcript"
)

const jobColumns = "id, source, status, model, language, size_bytes, transcript_text, segments_json, duration_seconds, output_dir, error_message, created_at, updated_at, completed_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           string
		source       string
		statusStr    string
		model        sql.NullString
		language     sql.NullString
		sizeBytes    int64
		text         sql.NullString
		segmentsJSON sql.NullString
		duration     float64
		outputDir    sql.NullString
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
		completedRaw sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&source,
		&statusStr,
		&model,
		&language,
		&sizeBytes,
		&text,
		&segmentsJSON,
		&duration,
		&outputDir,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:           id,
		Source:       source,
		Status:       Status(statusStr),
		Model:        model.String,
		Language:     language.String,
		SizeBytes:    sizeBytes,
		Text:         text.String,
		Duration:     duration,
		OutputDir:    outputDir.String,
		ErrorMessage: errorMessage.String,
	}
	if segmentsJSON.Valid && segmentsJSON.String != "" {
		var segs []transcript.Segment
		if err := json.Unmarshal([]byte(segmentsJSON.String), &segs); err != nil {
			return nil, fmt.Errorf("decode segments for job %s: %w", id, err)
		}
		job.Segments = segs
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	return job, nil
}

func encodeSegments(segs []transcript.Segment) (any, error) {
	if len(segs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(segs)
	if err != nil {
		return nil, fmt.Errorf("encode segments: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// storedTimeLayout keeps a fixed number of fractional digits so stored
// timestamps sort lexically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
