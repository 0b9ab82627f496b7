package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"albumus/internal/artwork"
	"albumus/internal/compile"
	"albumus/internal/config"
	"albumus/internal/faults"
	"albumus/internal/history"
	"albumus/internal/logging"
	"albumus/internal/media"
	"albumus/internal/media/ffmpeg"
	"albumus/internal/media/ffprobe"
	"albumus/internal/preflight"
	"albumus/internal/tags"
)

const compileLogTask = "compile_audio"

func newCompileCommand(ctx *commandContext) *cobra.Command {
	var formatFlags []string
	var workers int
	var allowPartial bool
	var skipHistory bool

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Encode, tag and render art for every album under in/",
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatFlags)
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd.OutOrStdout(), compileLogTask)
			if err != nil {
				return err
			}
			defer logger.Close()

			layout, cfg, err := ctx.loadProject()
			if err != nil {
				return abortCompile(logger, err)
			}
			if err := preflight.Failed(preflight.RunAll(cmd.Context(), layout, cfg)); err != nil {
				return abortCompile(logger, err)
			}
			release, err := layout.Lock()
			if err != nil {
				return abortCompile(logger, err)
			}
			defer func() { _ = release() }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			compiler, err := newCompiler(cfg, logger, layout.Root, workers)
			if err != nil {
				return err
			}
			report, err := compiler.Run(runCtx, layout.In, layout.Out, formats)
			if err != nil {
				return err
			}

			if !skipHistory {
				recordHistory(cmd.Context(), ctx, logger, report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(report, layout.Rel, shouldColorize(cmd.OutOrStdout())))

			switch {
			case report.Interrupted:
				return &exitError{code: ffmpeg.ExitInterrupted}
			case report.Failed() > 0 && !allowPartial:
				return &exitError{code: 1, message: fmt.Sprintf("%d of %d jobs failed (see %s)", report.Failed(), len(report.Jobs), compileLogTask+".log")}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formatFlags, "format", "f", nil, "Output formats (default: formats from project config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Tracks encoded in parallel (default: pipeline.workers)")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "Exit 0 even when some jobs failed")
	cmd.Flags().BoolVar(&skipHistory, "no-history", false, "Do not record the run in the history database")
	return cmd
}

// abortCompile records a fatal setup error in the task log before it ends the run.
func abortCompile(logger *logging.Logger, err error) error {
	logger.Error("compile aborted", logging.Error(err))
	return err
}

func parseFormats(values []string) ([]media.Format, error) {
	var formats []media.Format
	seen := make(map[media.Format]bool)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			format, err := media.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[format] {
				seen[format] = true
				formats = append(formats, format)
			}
		}
	}
	return formats, nil
}

// newCompiler wires the real ffmpeg runner, ffprobe prober and tag writer.
func newCompiler(cfg *config.Project, logger *logging.Logger, projectRoot string, workers int) (*compile.Compiler, error) {
	runner := ffmpeg.New(cfg.FFmpeg.Binary, cfg.FFmpeg.TimeoutSeconds, ffmpeg.WithLogger(logger.Logger))
	probeBinary := cfg.FFmpeg.ProbeBinary
	writer, err := tags.NewWriter(
		tags.WithRemuxer(runner),
		tags.WithTagReader(func(ctx context.Context, path string) (map[string]string, error) {
			result, err := ffprobe.Inspect(ctx, probeBinary, path)
			if err != nil {
				return nil, err
			}
			return result.AudioTags(), nil
		}),
		tags.WithLogger(logger.Logger),
	)
	if err != nil {
		return nil, err
	}
	return compile.New(cfg,
		compile.WithEncoder(runner),
		compile.WithProber(compile.ProberFunc(func(ctx context.Context, path string) (int64, bool) {
			return ffprobe.ProbeBitrate(ctx, probeBinary, path)
		})),
		compile.WithTagWriter(writer),
		compile.WithArtGenerator(artwork.NewGenerator(cfg.Output, logger.Logger)),
		compile.WithLogger(logger.Logger),
		compile.WithProjectRoot(projectRoot),
		compile.WithWorkers(workers),
	)
}

func recordHistory(ctx context.Context, c *commandContext, logger *logging.Logger, report *compile.Report) {
	app, _, err := c.ensureApp()
	if err != nil {
		return
	}
	store, err := history.Open(app.HistoryDB)
	if err != nil {
		logger.Warn("history unavailable, run not recorded", logging.Error(err))
		return
	}
	defer store.Close()
	if err := store.RecordRun(context.WithoutCancel(ctx), report); err != nil {
		logger.Warn("record run history failed", logging.String(logging.FieldRunID, report.RunID), logging.Error(err))
	}
}

func renderReport(report *compile.Report, rel func(string) string, colorize bool) string {
	rows := make([][]string, 0, len(report.Jobs))
	for _, job := range report.Jobs {
		detail := rel(job.Output)
		if job.Status != faults.StatusOK && job.Error != "" {
			detail = job.Error
		}
		rows = append(rows, []string{
			job.Artist,
			job.Album,
			job.Track,
			string(job.Format),
			colorStatus(job.Status, colorize),
			detail,
		})
	}
	var b strings.Builder
	if len(rows) > 0 {
		b.WriteString(renderTable([]tableColumn{
			{Header: "Artist"},
			{Header: "Album"},
			{Header: "Track"},
			{Header: "Format"},
			{Header: "Status"},
			{Header: "Output", MaxWidth: 72},
		}, rows))
		b.WriteString("\n")
	}
	for _, skip := range report.Skipped {
		fmt.Fprintf(&b, "skipped %s/%s/%s: %s\n", skip.Artist, skip.Album, skip.Track, skip.Reason)
	}
	summary := fmt.Sprintf("%d succeeded, %d failed, %d skipped, %d art files (run %s)",
		report.Succeeded(), report.Failed(), len(report.Skipped), len(report.Art), report.RunID)
	if report.Interrupted {
		summary += ", interrupted"
	}
	b.WriteString(summary)
	return b.String()
}
