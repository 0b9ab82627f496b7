package compile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"albumus/internal/artwork"
	"albumus/internal/compile"
	"albumus/internal/config"
	"albumus/internal/faults"
	"albumus/internal/media"
	"albumus/internal/media/ffmpeg"
	"albumus/internal/metadata"
	"albumus/internal/tags"
	"albumus/internal/testsupport"
)

type fakeEncoder struct {
	mu     sync.Mutex
	fail   func(output string) bool
	cancel context.CancelFunc
	calls  []string
}

func (f *fakeEncoder) Run(ctx context.Context, args []string, _ func(string)) (int, error) {
	output := args[len(args)-1]
	f.mu.Lock()
	f.calls = append(f.calls, output)
	f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		return ffmpeg.ExitInterrupted, faults.Wrap(faults.ErrInterrupted, "encode", "ffmpeg", "interrupted by user", faults.ErrEncode)
	}
	if f.fail != nil && f.fail(output) {
		return 1, faults.Wrap(faults.ErrEncode, "encode", "ffmpeg", "exited with code 1", nil)
	}
	return 0, os.WriteFile(output, []byte("audio"), 0o644)
}

type fakeTagger struct {
	mu     sync.Mutex
	tagged map[string]metadata.Tags
	covers map[string]bool
	err    error
}

func (f *fakeTagger) Write(_ context.Context, path string, _ media.Format, t metadata.Tags, cover *tags.Cover) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tagged == nil {
		f.tagged = map[string]metadata.Tags{}
		f.covers = map[string]bool{}
	}
	f.tagged[path] = t
	f.covers[path] = cover != nil
	return f.err
}

func twoTrackAlbum() testsupport.Album {
	return testsupport.Album{
		Artist:     "A",
		Name:       "B",
		ArtistTags: map[string]any{"artist": "A", "genre": "Rock"},
		AlbumTags:  map[string]any{"album": "B"},
		TrackTags: map[string]map[string]any{
			"one.wav": {"tracknumber": 1, "title": "First Song"},
			"two.wav": {"tracknumber": "2", "title": "Second"},
		},
		Tracks:      []string{"one.wav", "two.wav"},
		CoverWidth:  500,
		CoverHeight: 500,
	}
}

func newCompiler(t *testing.T, fx *testsupport.Fixture, opts ...compile.Option) (*compile.Compiler, *config.Project) {
	t.Helper()
	cfg, err := config.LoadProject(fx.App, fx.Layout.Root)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	base := []compile.Option{
		compile.WithProber(compile.ProberFunc(func(context.Context, string) (int64, bool) { return 320000, true })),
		compile.WithArtGenerator(artwork.NewGenerator(cfg.Output, nil)),
		compile.WithProjectRoot(fx.Layout.Root),
	}
	c, err := compile.New(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("compile.New: %v", err)
	}
	return c, cfg
}

func TestRunProducesMirroredOutputs(t *testing.T) {
	fx := testsupport.NewProject(t, testsupport.WithAlbum(twoTrackAlbum()))
	encoder := &fakeEncoder{}
	tagger := &fakeTagger{}
	c, _ := newCompiler(t, fx, compile.WithEncoder(encoder), compile.WithTagWriter(tagger))

	report, err := c.Run(context.Background(), fx.Layout.In, fx.Layout.Out, []media.Format{media.MP3, media.FLAC})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	albumOut := filepath.Join(fx.Layout.Out, "A", "B")
	want := []string{
		filepath.Join(albumOut, "mp3", "1_First_Song.mp3"),
		filepath.Join(albumOut, "flac", "1_First_Song.flac"),
		filepath.Join(albumOut, "mp3", "2_Second.mp3"),
		filepath.Join(albumOut, "flac", "2_Second.flac"),
	}
	for _, path := range want {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected output %s: %v", path, err)
		}
	}
	if report.Succeeded() != 4 || report.Failed() != 0 {
		t.Fatalf("succeeded=%d failed=%d", report.Succeeded(), report.Failed())
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}
	got := tagger.tagged[want[0]]
	if got[metadata.KeyGenre] != "Rock" || got[metadata.KeyTrackNumber] != "1" || !tagger.covers[want[0]] {
		t.Fatalf("unexpected tags for %s: %v", want[0], got)
	}
	// 500x500 cover: medium (600) and larger sizes do not fit, small (300) does.
	if len(report.Art) != 1 || filepath.Base(report.Art[0]) != "cover_small.jpg" {
		t.Fatalf("unexpected art: %v", report.Art)
	}
}

func TestRunEncodeFailureIsolated(t *testing.T) {
	fx := testsupport.NewProject(t, testsupport.WithAlbum(twoTrackAlbum()))
	encoder := &fakeEncoder{fail: func(output string) bool { return strings.HasSuffix(output, "1_First_Song.mp3") }}
	tagger := &fakeTagger{}
	c, _ := newCompiler(t, fx, compile.WithEncoder(encoder), compile.WithTagWriter(tagger))

	report, err := c.Run(context.Background(), fx.Layout.In, fx.Layout.Out, []media.Format{media.MP3, media.FLAC})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Succeeded() != 3 || report.Failed() != 1 {
		t.Fatalf("succeeded=%d failed=%d", report.Succeeded(), report.Failed())
	}
	var failed compile.JobResult
	for _, job := range report.Jobs {
		if job.Status != faults.StatusOK {
			failed = job
		}
	}
	if failed.Status != faults.StatusEncodeFail || failed.Stage != compile.StageEncode || failed.ExitCode != 1 {
		t.Fatalf("unexpected failed job: %+v", failed)
	}
	if _, tagged := tagger.tagged[failed.Output]; tagged {
		t.Fatal("failed encode must not be tagged")
	}
	if !report.HasFailures() {
		t.Fatal("expected HasFailures")
	}
}

func TestRunTagFailureKeepsOutput(t *testing.T) {
	fx := testsupport.NewProject(t, testsupport.WithAlbum(twoTrackAlbum()))
	c, _ := newCompiler(t, fx, compile.WithEncoder(&fakeEncoder{}), compile.WithTagWriter(&fakeTagger{err: faults.ErrTagWrite}))

	report, err := c.Run(context.Background(), fx.Layout.In, fx.Layout.Out, []media.Format{media.FLAC, media.WAV})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, job := range report.Jobs {
		want := faults.StatusTagFail
		if job.Format == media.WAV {
			want = faults.StatusOK
		}
		if job.Status != want {
			t.Fatalf("%s: status = %s, want %s", job.Output, job.Status, want)
		}
		if _, err := os.Stat(job.Output); err != nil {
			t.Fatalf("output must be retained: %v", err)
		}
	}
}

func TestRunSkipsTracksWithoutNumberOrDuplicateName(t *testing.T) {
	album := twoTrackAlbum()
	album.Tracks = append(album.Tracks, "three.wav", "four.flac", "notes.txt")
	album.TrackTags["three.wav"] = map[string]any{"title": "No Number"}
	album.TrackTags["four.flac"] = map[string]any{"tracknumber": 1, "title": "First Song"}
	fx := testsupport.NewProject(t, testsupport.WithAlbum(album))
	encoder := &fakeEncoder{}
	c, _ := newCompiler(t, fx, compile.WithEncoder(encoder), compile.WithTagWriter(&fakeTagger{}))

	report, err := c.Run(context.Background(), fx.Layout.In, fx.Layout.Out, []media.Format{media.WAV})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d: %+v", len(report.Jobs), report.Jobs)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("expected 2 skipped tracks, got %+v", report.Skipped)
	}
	// four tracks are audio files, so the padding width stays 1.
	if report.Jobs[0].Output != filepath.Join(fx.Layout.Out, "A", "B", "wav", "1_First_Song.wav") {
		t.Fatalf("unexpected output %s", report.Jobs[0].Output)
	}
}

func TestRunMetadataErrorSkipsOnlyThatTrack(t *testing.T) {
	album := twoTrackAlbum()
	album.TrackTags["two.wav"] = map[string]any{"tracknumber": "two"}
	fx := testsupport.NewProject(t, testsupport.WithAlbum(album))
	c, _ := newCompiler(t, fx, compile.WithEncoder(&fakeEncoder{}), compile.WithTagWriter(&fakeTagger{}))

	report, err := c.Run(context.Background(), fx.Layout.In, fx.Layout.Out, []media.Format{media.MP3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Succeeded() != 1 || len(report.Skipped) != 1 || report.Skipped[0].Track != "two.wav" {
		t.Fatalf("unexpected report: jobs=%+v skipped=%+v", report.Jobs, report.Skipped)
	}
}

func TestRunWorkerPoolMatchesSequential(t *testing.T) {
	album := twoTrackAlbum()
	second := twoTrackAlbum()
	second.Name = "C"
	fx := testsupport.NewProject(t, testsupport.WithAlbum(album), testsupport.WithAlbum(second))
	encoder := &fakeEncoder{}
	c, _ := newCompiler(t, fx, compile.WithEncoder(encoder), compile.WithTagWriter(&fakeTagger{}), compile.WithWorkers(4))

	report, err := c.Run(context.Background(), fx.Layout.In, fx.Layout.Out, []media.Format{media.MP3, media.OGG, media.FLAC})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Succeeded() != 12 {
		t.Fatalf("succeeded = %d", report.Succeeded())
	}
	seen := map[string]bool{}
	for _, output := range encoder.calls {
		if seen[output] {
			t.Fatalf("output %s targeted twice", output)
		}
		seen[output] = true
	}
	if report.Jobs[0].Album != "B" || report.Jobs[0].Format != media.MP3 || report.Jobs[len(report.Jobs)-1].Album != "C" {
		t.Fatalf("results not sorted: first=%+v last=%+v", report.Jobs[0], report.Jobs[len(report.Jobs)-1])
	}
}

func TestRunInterruptStopsNewJobs(t *testing.T) {
	fx := testsupport.NewProject(t, testsupport.WithAlbum(twoTrackAlbum()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	encoder := &fakeEncoder{cancel: cancel}
	c, _ := newCompiler(t, fx, compile.WithEncoder(encoder), compile.WithTagWriter(&fakeTagger{}), compile.WithWorkers(1))

	report, err := c.Run(ctx, fx.Layout.In, fx.Layout.Out, []media.Format{media.MP3, media.FLAC})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Interrupted {
		t.Fatal("expected interrupted report")
	}
	if len(encoder.calls) != 1 {
		t.Fatalf("expected a single encode before stopping, got %v", encoder.calls)
	}
	if len(report.Jobs) != 1 || report.Jobs[0].Status != faults.StatusInterrupted || report.Jobs[0].ExitCode != ffmpeg.ExitInterrupted {
		t.Fatalf("unexpected jobs: %+v", report.Jobs)
	}
}

func TestRunMissingInputRoot(t *testing.T) {
	fx := testsupport.NewProject(t)
	c, _ := newCompiler(t, fx, compile.WithEncoder(&fakeEncoder{}), compile.WithTagWriter(&fakeTagger{}))
	if _, err := c.Run(context.Background(), filepath.Join(fx.BaseDir, "nope"), fx.Layout.Out, nil); err == nil {
		t.Fatal("expected error for missing input root")
	}
}

func TestRunMissingCoverStillEncodes(t *testing.T) {
	album := twoTrackAlbum()
	album.CoverWidth = 0
	fx := testsupport.NewProject(t, testsupport.WithAlbum(album))
	tagger := &fakeTagger{}
	c, _ := newCompiler(t, fx, compile.WithEncoder(&fakeEncoder{}), compile.WithTagWriter(tagger))

	report, err := c.Run(context.Background(), fx.Layout.In, fx.Layout.Out, []media.Format{media.MP3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Succeeded() != 2 || len(report.Art) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for path, hasCover := range tagger.covers {
		if hasCover {
			t.Fatalf("%s tagged with a cover that does not exist", path)
		}
	}
}
