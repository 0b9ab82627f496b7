package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"albumus/internal/compile"
	"albumus/internal/media"
)

// Run is one recorded compile run.
type Run struct {
	ID          string
	InputRoot   string
	OutputRoot  string
	Formats     []media.Format
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool
	Succeeded   int
	Failed      int
	Skipped     int
	Art         int
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Job is one recorded track-format result.
type Job struct {
	RunID    string
	Artist   string
	Album    string
	Track    string
	Format   media.Format
	Output   string
	Decision string
	Status   string
	Stage    string
	ExitCode int
	Error    string
	Duration time.Duration
}

// RecordRun stores report and its jobs in one transaction.
func (s *Store) RecordRun(ctx context.Context, report *compile.Report) error {
	if report == nil || report.RunID == "" {
		return errors.New("history: report with run id required")
	}
	formats := make([]string, len(report.Formats))
	for i, f := range report.Formats {
		formats[i] = string(f)
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (
                id, input_root, output_root, formats, started_at, finished_at,
                interrupted, succeeded, failed, skipped, art
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID,
			report.InputRoot,
			report.OutputRoot,
			strings.Join(formats, ","),
			report.StartedAt.UTC().Format(time.RFC3339Nano),
			report.FinishedAt.UTC().Format(time.RFC3339Nano),
			boolToInt(report.Interrupted),
			report.Succeeded(),
			report.Failed(),
			len(report.Skipped),
			len(report.Art),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO jobs (
                run_id, artist, album, track, format, output, decision,
                status, stage, exit_code, error_message, duration_ms
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare job insert: %w", err)
		}
		defer stmt.Close()
		for _, job := range report.Jobs {
			if _, err := stmt.ExecContext(ctx,
				report.RunID,
				job.Artist,
				job.Album,
				job.Track,
				string(job.Format),
				job.Output,
				nullableString(job.Decision),
				job.Status,
				nullableString(job.Stage),
				job.ExitCode,
				nullableString(job.Error),
				job.Duration.Milliseconds(),
			); err != nil {
				return fmt.Errorf("insert job %s/%s: %w", job.Track, job.Format, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit record: %w", err)
		}
		return nil
	})
}

const runColumns = `id, input_root, output_root, formats, started_at, finished_at,
    interrupted, succeeded, failed, skipped, art`

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run by id, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// RunJobs returns the jobs of one run in insertion order.
func (s *Store) RunJobs(ctx context.Context, runID string) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, artist, album, track, format, output, decision, status,
            stage, exit_code, error_message, duration_ms
        FROM jobs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			job                      Job
			format                   string
			decision, stage, message sql.NullString
			durationMS               int64
		)
		if err := rows.Scan(&job.RunID, &job.Artist, &job.Album, &job.Track, &format, &job.Output,
			&decision, &job.Status, &stage, &job.ExitCode, &message, &durationMS); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.Format = media.Format(format)
		job.Decision = decision.String
		job.Stage = stage.String
		job.Error = message.String
		job.Duration = time.Duration(durationMS) * time.Millisecond
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (Run, error) {
	var (
		run               Run
		formats           string
		started, finished string
		interrupted       int
	)
	if err := scanner.Scan(&run.ID, &run.InputRoot, &run.OutputRoot, &formats, &started, &finished,
		&interrupted, &run.Succeeded, &run.Failed, &run.Skipped, &run.Art); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	for _, f := range strings.Split(formats, ",") {
		if f != "" {
			run.Formats = append(run.Formats, media.Format(f))
		}
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.Interrupted = interrupted != 0
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
