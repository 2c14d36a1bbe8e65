package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrAmbiguousID is returned when a short identifier matches more than one job.
var ErrAmbiguousID = errors.New("ambiguous job id")

// Create inserts a job in the processing state. A random UUID is assigned
// when spec.ID is empty.
func (s *Store) Create(ctx context.Context, spec NewJob) (*Job, error) {
	if strings.TrimSpace(spec.Source) == "" {
		return nil, errors.New("history: job source is required")
	}
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		id = uuid.NewString()
	}
	timestamp := formatTime(time.Now())

	if _, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (
            id, source, status, model, language, size_bytes, output_dir, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		spec.Source,
		StatusProcessing,
		nullableString(spec.Model),
		nullableString(spec.Language),
		spec.SizeBytes,
		nullableString(spec.OutputDir),
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.Get(ctx, id)
}

// Complete stores the transcript for a job and marks it completed.
func (s *Store) Complete(ctx context.Context, id string, outcome Outcome) error {
	segments, err := encodeSegments(outcome.Segments)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs
         SET status = ?, transcript_text = ?, segments_json = ?, duration_seconds = ?,
             language = COALESCE(?, language), error_message = NULL, updated_at = ?, completed_at = ?
         WHERE id = ?`,
		StatusCompleted,
		outcome.Text,
		segments,
		outcome.Duration,
		nullableString(outcome.Language),
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return requireRow(res, id)
}

// Fail records a terminal failure for a job. status must be a terminal,
// non-completed status.
func (s *Store) Fail(ctx context.Context, id string, status Status, message string) error {
	if status != StatusFailed && status != StatusRejected {
		return fmt.Errorf("history: %q is not a failure status", status)
	}
	now := formatTime(time.Now())
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		status,
		nullableString(strings.TrimSpace(message)),
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return requireRow(res, id)
}

// SetOutputDir records where a job's transcript files were written.
func (s *Store) SetOutputDir(ctx context.Context, id, dir string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET output_dir = ?, updated_at = ? WHERE id = ?`,
		nullableString(dir),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("set output dir: %w", err)
	}
	return requireRow(res, id)
}

// Get fetches a job by its full identifier. It returns nil without error when
// no job matches.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Resolve fetches a job by full identifier or unique prefix, so the short IDs
// printed by the CLI can be passed back in.
func (s *Store) Resolve(ctx context.Context, idOrPrefix string) (*Job, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, nil
	}
	if job, err := s.Get(ctx, idOrPrefix); job != nil || err != nil {
		return job, err
	}

	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(idOrPrefix) + "%"
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+jobColumns+` FROM jobs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return nil, fmt.Errorf("resolve job: %w", err)
	}
	defer rows.Close()

	var matches []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		matches = append(matches, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, idOrPrefix)
	}
}

// List returns jobs newest first. A limit <= 0 returns every job.
func (s *Store) List(ctx context.Context, limit int) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// Remove deletes a job. It reports whether a row was deleted.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear deletes every job and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// Counts returns the number of jobs per status.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

// FailStale marks jobs left in processing by a crashed process as failed. It
// returns the number of jobs updated.
func (s *Store) FailStale(ctx context.Context) (int64, error) {
	now := formatTime(time.Now())
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ?, completed_at = ? WHERE status = ?`,
		StatusFailed,
		"interrupted before completion",
		now,
		now,
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs: %w", err)
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("history: job %s not found", id)
	}
	return nil
}
