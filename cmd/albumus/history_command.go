package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"albumus/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past compile runs, or the jobs of one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			store, err := history.Open(app.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if runID != "" {
				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", runID)
				}
				jobs, err := store.RunJobs(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, historyRunJSON(*run, jobs))
				}
				fmt.Fprintln(out, renderJobs(jobs, colorize))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				payload := make([]runJSON, 0, len(runs))
				for _, run := range runs {
					payload = append(payload, historyRunJSON(run, nil))
				}
				return writeJSON(cmd, payload)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs, colorize))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show the jobs of one run")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs (or one run with its jobs) as JSON")
	return cmd
}

func renderRuns(runs []history.Run, colorize bool) string {
	rows := make([][]string, 0, len(runs))
	var succeeded, failed, skipped int
	for _, run := range runs {
		succeeded += run.Succeeded
		failed += run.Failed
		skipped += run.Skipped
		state := "ok"
		switch {
		case run.Interrupted:
			state = "interrupted"
		case run.Failed > 0:
			state = "failed"
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Duration().Round(time.Second).String(),
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Skipped),
			colorStatus(state, colorize),
		})
	}
	return renderTable([]tableColumn{
		{Header: "Run"},
		{Header: "Started"},
		{Header: "Duration", Align: alignRight},
		{Header: "OK", Align: alignRight},
		{Header: "Failed", Align: alignRight},
		{Header: "Skipped", Align: alignRight},
		{Header: "Status"},
	}, rows, "Total", "", "", strconv.Itoa(succeeded), strconv.Itoa(failed), strconv.Itoa(skipped), "")
}

func renderJobs(jobs []history.Job, colorize bool) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.Artist,
			job.Album,
			job.Track,
			string(job.Format),
			job.Decision,
			colorStatus(job.Status, colorize),
			strconv.Itoa(job.ExitCode),
			job.Error,
		})
	}
	return renderTable([]tableColumn{
		{Header: "Artist"},
		{Header: "Album"},
		{Header: "Track"},
		{Header: "Format"},
		{Header: "Decision"},
		{Header: "Status"},
		{Header: "Exit", Align: alignRight},
		{Header: "Error", MaxWidth: 60},
	}, rows)
}
