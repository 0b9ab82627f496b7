package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"albumus/internal/history"
	"albumus/internal/media"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runJSON struct {
	ID          string         `json:"id"`
	InputRoot   string         `json:"input_root"`
	OutputRoot  string         `json:"output_root"`
	Formats     []media.Format `json:"formats"`
	StartedAt   string         `json:"started_at"`
	FinishedAt  string         `json:"finished_at"`
	DurationMS  int64          `json:"duration_ms"`
	Interrupted bool           `json:"interrupted"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
	Skipped     int            `json:"skipped"`
	Art         int            `json:"art"`
	Jobs        []jobJSON      `json:"jobs,omitempty"`
}

type jobJSON struct {
	Artist     string       `json:"artist"`
	Album      string       `json:"album"`
	Track      string       `json:"track"`
	Format     media.Format `json:"format"`
	Output     string       `json:"output"`
	Decision   string       `json:"decision"`
	Status     string       `json:"status"`
	Stage      string       `json:"stage,omitempty"`
	ExitCode   int          `json:"exit_code"`
	Error      string       `json:"error,omitempty"`
	DurationMS int64        `json:"duration_ms"`
}

// historyRunJSON mirrors the runs table; jobs are attached only when listing
// a single run.
func historyRunJSON(run history.Run, jobs []history.Job) runJSON {
	out := runJSON{
		ID:          run.ID,
		InputRoot:   run.InputRoot,
		OutputRoot:  run.OutputRoot,
		Formats:     run.Formats,
		StartedAt:   run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:  run.FinishedAt.UTC().Format(time.RFC3339),
		DurationMS:  run.Duration().Milliseconds(),
		Interrupted: run.Interrupted,
		Succeeded:   run.Succeeded,
		Failed:      run.Failed,
		Skipped:     run.Skipped,
		Art:         run.Art,
	}
	for _, job := range jobs {
		out.Jobs = append(out.Jobs, jobJSON{
			Artist:     job.Artist,
			Album:      job.Album,
			Track:      job.Track,
			Format:     job.Format,
			Output:     job.Output,
			Decision:   job.Decision,
			Status:     job.Status,
			Stage:      job.Stage,
			ExitCode:   job.ExitCode,
			Error:      job.Error,
			DurationMS: job.Duration.Milliseconds(),
		})
	}
	return out
}
