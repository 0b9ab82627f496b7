package compile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"albumus/internal/bitrate"
	"albumus/internal/config"
	"albumus/internal/faults"
	"albumus/internal/logging"
	"albumus/internal/media"
	"albumus/internal/media/ffmpeg"
	"albumus/internal/metadata"
	"albumus/internal/tags"
)

// Prober measures the source bitrate of a track.
type Prober interface {
	ProbeBitrate(ctx context.Context, path string) (int64, bool)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, path string) (int64, bool)

func (f ProberFunc) ProbeBitrate(ctx context.Context, path string) (int64, bool) {
	return f(ctx, path)
}

// Encoder runs one encoder invocation.
type Encoder interface {
	Run(ctx context.Context, args []string, onLine func(string)) (int, error)
}

// TagWriter applies tags and cover art to an encoded output.
type TagWriter interface {
	Write(ctx context.Context, path string, format media.Format, tags metadata.Tags, cover *tags.Cover) error
}

// ArtGenerator derives the album art variants.
type ArtGenerator interface {
	Generate(ctx context.Context, sourcePath, outputDir string, sizes map[string]config.Size) ([]string, error)
}

// Option configures the compiler.
type Option func(*Compiler)

func WithProber(p Prober) Option { return func(c *Compiler) { c.prober = p } }

func WithEncoder(e Encoder) Option { return func(c *Compiler) { c.encoder = e } }

func WithTagWriter(w TagWriter) Option { return func(c *Compiler) { c.tagger = w } }

func WithArtGenerator(g ArtGenerator) Option { return func(c *Compiler) { c.art = g } }

func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProjectRoot sets the directory log paths are made relative to when
// logging.log_relative_paths is enabled.
func WithProjectRoot(root string) Option { return func(c *Compiler) { c.projectRoot = root } }

// WithWorkers overrides pipeline.workers.
func WithWorkers(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option { return func(c *Compiler) { c.runID = id } }

// Compiler runs the batch pipeline for one project configuration.
type Compiler struct {
	cfg         *config.Project
	prober      Prober
	encoder     Encoder
	tagger      TagWriter
	art         ArtGenerator
	logger      *slog.Logger
	projectRoot string
	workers     int
	runID       string
	now         func() time.Time
}

// New builds a compiler. Collaborators not supplied through options are
// created from cfg.
func New(cfg *config.Project, opts ...Option) (*Compiler, error) {
	if cfg == nil {
		return nil, errors.New("compile: project config required")
	}
	c := &Compiler{
		cfg:     cfg,
		logger:  logging.NewNop(),
		workers: cfg.Pipeline.Workers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "compile")
	if c.workers < 1 {
		c.workers = 1
	}
	if c.encoder == nil {
		c.encoder = ffmpeg.New(cfg.FFmpeg.Binary, cfg.FFmpeg.TimeoutSeconds, ffmpeg.WithLogger(c.logger))
	}
	if c.prober == nil {
		c.prober = ProberFunc(func(context.Context, string) (int64, bool) { return 0, false })
	}
	if c.tagger == nil {
		writer, err := tags.NewWriter(tags.WithRemuxer(c.encoder), tags.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.tagger = writer
	}
	return c, nil
}

// trackJob is one track ready for encoding.
type trackJob struct {
	album  Album
	source string
	input  string
	base   string
	tags   metadata.Tags
	cover  *tags.Cover
}

// Run compiles every album under inputRoot into outputRoot. The returned
// error is non-nil only when the input root cannot be listed; everything
// narrower is recorded in the report.
func (c *Compiler) Run(ctx context.Context, inputRoot, outputRoot string, formats []media.Format) (*Report, error) {
	if len(formats) == 0 {
		formats = c.cfg.Formats
	}
	runID := c.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = faults.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)

	report := &Report{
		RunID:      runID,
		InputRoot:  inputRoot,
		OutputRoot: outputRoot,
		Formats:    append([]media.Format(nil), formats...),
		StartedAt:  c.now(),
	}
	logger.Info("compile started",
		logging.String("input", c.display(inputRoot)),
		logging.String("output", c.display(outputRoot)),
		logging.Any("formats", formats),
		logging.Int("workers", c.workers),
	)

	albums, warnings, err := Discover(inputRoot)
	if err != nil {
		report.finish(c.now())
		logger.Error("input root unavailable", logging.Error(err))
		return report, err
	}
	for _, warning := range warnings {
		logger.Warn("skipping unreadable directory", logging.Error(warning))
	}

	var group errgroup.Group
	group.SetLimit(c.workers)

submit:
	for _, album := range albums {
		if ctx.Err() != nil {
			report.markInterrupted()
			break
		}
		for _, job := range c.prepareAlbum(ctx, report, album, outputRoot) {
			if ctx.Err() != nil {
				report.markInterrupted()
				break submit
			}
			group.Go(func() error {
				c.runTrack(ctx, report, job, outputRoot, formats)
				return nil
			})
		}
	}
	_ = group.Wait()

	if ctx.Err() != nil {
		report.markInterrupted()
	}
	report.finish(c.now())
	logLevel := slog.LevelInfo
	if report.HasFailures() {
		logLevel = slog.LevelWarn
	}
	logger.Log(ctx, logLevel, "compile complete",
		logging.Int("succeeded", report.Succeeded()),
		logging.Int("failed", report.Failed()),
		logging.Int("skipped", len(report.Skipped)),
		logging.Int("art", len(report.Art)),
		logging.Bool("interrupted", report.Interrupted),
		logging.String("duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond).String()),
	)
	return report, nil
}

// prepareAlbum creates the album output directory, renders album art, and
// resolves every track into a job. Tracks that cannot be named are skipped.
func (c *Compiler) prepareAlbum(ctx context.Context, report *Report, album Album, outputRoot string) []trackJob {
	ctx = logging.WithAttrs(ctx,
		logging.String(logging.FieldArtist, album.Artist),
		logging.String(logging.FieldAlbum, album.Name),
	)
	logger := logging.WithContext(ctx, c.logger)

	albumOut := AlbumOutputDir(outputRoot, album)
	if err := os.MkdirAll(albumOut, 0o755); err != nil {
		logger.Error("create album output directory failed", logging.String(logging.FieldPath, c.display(albumOut)), logging.Error(err))
		report.addSkip(Skip{Artist: album.Artist, Album: album.Name, Reason: err.Error()})
		return nil
	}
	logger.Info("processing album", logging.Int("tracks", len(album.Tracks)))

	var cover *tags.Cover
	if _, err := os.Stat(album.Cover); err != nil {
		logger.Warn("cover image missing, album art and embedded covers skipped", logging.String(logging.FieldPath, c.display(album.Cover)))
	} else {
		if c.art != nil {
			written, err := c.art.Generate(faults.WithStage(ctx, "artwork"), album.Cover, albumOut, c.cfg.Output.ArtSizes)
			if err != nil {
				logger.Warn("album art generation failed", logging.Error(err))
			}
			report.addArt(written)
		}
		if cover, err = tags.LoadCover(album.Cover); err != nil {
			logger.Warn("cover image unreadable", logging.Error(err))
			cover = nil
		}
	}

	total := len(album.Tracks)
	seen := make(map[string]string, total)
	jobs := make([]trackJob, 0, total)
	for _, source := range album.Tracks {
		trackLogger := logger.With(logging.String(logging.FieldTrack, source))
		resolved, number, ok, err := metadata.Resolve(album.Metadata, source, total)
		if err != nil {
			trackLogger.Error("metadata unavailable, skipping track", logging.Error(err))
			report.addSkip(Skip{Artist: album.Artist, Album: album.Name, Track: source, Reason: err.Error()})
			continue
		}
		if !ok {
			trackLogger.Warn("track number not found, skipping track")
			report.addSkip(Skip{Artist: album.Artist, Album: album.Name, Track: source, Reason: "track number not found"})
			continue
		}
		base := BaseName(number, resolved, source)
		if previous, dup := seen[base]; dup {
			trackLogger.Warn("output name already used in album, skipping track", logging.String("name", base), logging.String("first", previous))
			report.addSkip(Skip{Artist: album.Artist, Album: album.Name, Track: source, Reason: fmt.Sprintf("duplicate output name %s (also %s)", base, previous)})
			continue
		}
		seen[base] = source
		jobs = append(jobs, trackJob{
			album:  album,
			source: source,
			input:  filepath.Join(album.Dir, source),
			base:   base,
			tags:   resolved,
			cover:  cover,
		})
	}
	return jobs
}

// runTrack probes once and produces every format for one track in order.
func (c *Compiler) runTrack(ctx context.Context, report *Report, job trackJob, outputRoot string, formats []media.Format) {
	ctx = logging.WithAttrs(ctx,
		logging.String(logging.FieldArtist, job.album.Artist),
		logging.String(logging.FieldAlbum, job.album.Name),
		logging.String(logging.FieldTrack, job.source),
	)
	if ctx.Err() != nil {
		report.markInterrupted()
		return
	}
	rate, known := c.prober.ProbeBitrate(faults.WithStage(ctx, "probe"), job.input)
	probe := bitrate.Probe{BitsPerSecond: rate, Known: known}
	if !known {
		logging.WithContext(ctx, c.logger).Debug("source bitrate unknown, using fallback quality",
			logging.String(logging.FieldPath, c.display(job.input)))
	}

	for _, format := range formats {
		if ctx.Err() != nil {
			report.markInterrupted()
			return
		}
		result := c.runFormat(logging.WithAttrs(ctx, logging.String(logging.FieldFormat, string(format))), job, outputRoot, format, probe)
		report.addJob(result)
		if result.Status == faults.StatusInterrupted {
			report.markInterrupted()
			return
		}
	}
}

func (c *Compiler) runFormat(ctx context.Context, job trackJob, outputRoot string, format media.Format, probe bitrate.Probe) JobResult {
	logger := logging.WithContext(ctx, c.logger)
	started := c.now()
	output := OutputPath(outputRoot, job.album, format, job.base)
	result := JobResult{
		Artist: job.album.Artist,
		Album:  job.album.Name,
		Track:  job.source,
		Format: format,
		Output: output,
		Stage:  StageDecide,
	}
	fail := func(err error, exitCode int) JobResult {
		result.Status = faults.Status(err)
		result.Error = err.Error()
		result.ExitCode = exitCode
		result.Duration = c.now().Sub(started)
		return result
	}

	decision, err := bitrate.Decide(format, probe, c.cfg.FFmpeg.BitrateStrategy)
	if err != nil {
		logger.Error("no encoder parameters for format", logging.Error(err))
		return fail(err, 0)
	}
	result.Decision = decision.String()
	args, err := ffmpeg.EncodeArgs(job.input, output, decision)
	if err != nil {
		logger.Error("build encoder arguments failed", logging.Error(err))
		return fail(err, 0)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		logger.Error("create format directory failed", logging.Error(err))
		return fail(faults.Wrap(faults.ErrEncode, StageEncode, "mkdir", filepath.Dir(output), err), 0)
	}

	result.Stage = StageEncode
	logger.Info("processing", logging.String("input", c.display(job.input)), logging.String("decision", result.Decision))
	code, err := c.encoder.Run(faults.WithStage(ctx, StageEncode), args, nil)
	if err != nil {
		if errors.Is(err, faults.ErrInterrupted) {
			logger.Warn("encode interrupted", logging.Int("exit_code", code))
		} else {
			logger.Error("encode failed, see encoder output above", logging.Int("exit_code", code), logging.Error(err))
		}
		return fail(err, code)
	}

	if format.Taggable() && c.tagger != nil {
		result.Stage = StageTag
		if err := c.tagger.Write(faults.WithStage(ctx, StageTag), output, format, job.tags, job.cover); err != nil {
			logger.Error("tagging failed, output kept untagged", logging.String(logging.FieldPath, c.display(output)), logging.Error(err))
			return fail(err, 0)
		}
	}

	result.Stage = StageDone
	result.Status = faults.StatusOK
	result.Duration = c.now().Sub(started)
	logger.Info("complete", logging.String("output", c.display(output)))
	return result
}

// display renders path for logs, relative to the project root when configured.
func (c *Compiler) display(path string) string {
	if !c.cfg.Logging.LogRelativePaths || c.projectRoot == "" {
		return path
	}
	rel, err := filepath.Rel(c.projectRoot, path)
	if err != nil {
		return path
	}
	return rel
}
