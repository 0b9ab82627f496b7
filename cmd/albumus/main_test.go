package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"albumus/internal/config"
	"albumus/internal/faults"
	"albumus/internal/media"
	"albumus/internal/testsupport"
)

const encoderStub = `for arg; do last="$arg"; done
if [ "$last" = "-version" ]; then
  echo 'ffmpeg version test'
  exit 0
fi
printf 'audio' > "$last"
`

type cliEnv struct {
	fx *testsupport.Fixture
}

func setupCLIEnv(t *testing.T, ffmpegBody string) *cliEnv {
	t.Helper()
	fx := testsupport.NewProject(t, testsupport.WithAlbum(testsupport.Album{
		Artist:     "A",
		Name:       "B",
		ArtistTags: map[string]any{"artist": "A"},
		AlbumTags:  map[string]any{"album": "B"},
		TrackTags: map[string]map[string]any{
			"one.wav": {"tracknumber": 1, "title": "One"},
			"two.wav": {"tracknumber": 2, "title": "Two"},
		},
		Tracks:      []string{"one.wav", "two.wav"},
		CoverWidth:  400,
		CoverHeight: 400,
	}))
	binDir := filepath.Join(fx.BaseDir, "bin")
	testsupport.WriteScript(t, filepath.Join(binDir, "ffmpeg"), ffmpegBody)
	testsupport.WriteScript(t, filepath.Join(binDir, "ffprobe"), "echo 320000\n")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+"/usr/bin:/bin")
	return &cliEnv{fx: fx}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--home", e.fx.App.Root, "--project", e.fx.Layout.Root}, args...))
}

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String() + stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestCompileWritesOutputsAndHistory(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)

	out, err := env.run(t, "compile", "--format", "wav")
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, out)
	}
	requireContains(t, out, "2 succeeded, 0 failed")
	albumOut := filepath.Join(env.fx.Layout.Out, "A", "B")
	for _, path := range []string{
		filepath.Join(albumOut, "wav", "1_One.wav"),
		filepath.Join(albumOut, "wav", "2_Two.wav"),
		filepath.Join(albumOut, "cover_small.jpg"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	if _, err := os.Stat(env.fx.App.LogFile(compileLogTask)); err != nil {
		t.Fatalf("expected compile log file: %v", err)
	}

	out, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.Contains(out, "No runs recorded") {
		t.Fatalf("expected recorded run, got %q", out)
	}
	requireContains(t, out, "ok")

	out, err = env.run(t, "logs", "-n", "200")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "compile complete")

	if _, err := env.run(t, "logs", "--task", "other"); err == nil {
		t.Fatal("expected unknown log task error")
	}
}

func TestHistoryJSON(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)
	if out, err := env.run(t, "compile", "--format", "wav"); err != nil {
		t.Fatalf("compile: %v\n%s", err, out)
	}

	out, err := env.run(t, "history", "--json")
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var runs []runJSON
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Succeeded != 2 || len(runs[0].Jobs) != 0 {
		t.Fatalf("runs = %+v", runs)
	}

	out, err = env.run(t, "history", "--run", runs[0].ID, "--json")
	if err != nil {
		t.Fatalf("history --run --json: %v", err)
	}
	var run runJSON
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("decode run: %v\n%s", err, out)
	}
	if len(run.Jobs) != 2 || run.Jobs[0].Status != "ok" || run.Jobs[0].Format != media.WAV {
		t.Fatalf("jobs = %+v", run.Jobs)
	}
}

func TestCompileFailureExitCode(t *testing.T) {
	env := setupCLIEnv(t, "echo 'boom' >&2\nexit 1\n")

	out, err := env.run(t, "compile", "--format", "wav", "--no-history")
	if err == nil {
		t.Fatalf("expected failure, got output %q", out)
	}
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	requireContains(t, out, "encode_failed")

	if _, err := env.run(t, "compile", "--format", "wav", "--no-history", "--allow-partial"); err != nil {
		t.Fatalf("--allow-partial must succeed: %v", err)
	}
}

func TestCompileRejectsUnknownFormat(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)
	if _, err := env.run(t, "compile", "--format", "aac"); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestCompileMissingEncoderFailsPreflight(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)
	t.Setenv("PATH", t.TempDir())
	_, err := env.run(t, "compile")
	if !errors.Is(err, faults.ErrPreflight) {
		t.Fatalf("expected ErrPreflight, got %v", err)
	}
	if _, statErr := os.Stat(env.fx.Layout.Out); statErr == nil {
		t.Fatal("preflight failure must not create output")
	}
}

func TestCompileLogsFatalConfigError(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)
	if err := os.WriteFile(env.fx.Layout.Config, []byte(`{"formats":`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := env.run(t, "compile")
	if !errors.Is(err, faults.ErrConfigParse) {
		t.Fatalf("expected ErrConfigParse, got %v", err)
	}
	content, readErr := os.ReadFile(env.fx.App.LogFile(compileLogTask))
	if readErr != nil {
		t.Fatalf("read compile log: %v", readErr)
	}
	requireContains(t, string(content), "compile aborted")
	requireContains(t, string(content), "parse")
}

func TestClearCommand(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)
	testsupport.WriteFile(t, filepath.Join(env.fx.Layout.Out, "A", "B", "wav", "x.wav"), 8)

	out, err := env.run(t, "clear")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	requireContains(t, out, "Deleted")
	if _, err := os.Stat(env.fx.Layout.Out); !os.IsNotExist(err) {
		t.Fatalf("expected out/ removed, got %v", err)
	}

	out, err = env.run(t, "clear")
	if err != nil {
		t.Fatalf("second clear: %v", err)
	}
	requireContains(t, out, "Nothing to delete")
}

func TestProjectUseListShow(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)
	home := env.fx.App.Root

	out, err := runCLI(t, []string{"--home", home, "project", "use", env.fx.Layout.Root})
	if err != nil {
		t.Fatalf("project use: %v", err)
	}
	requireContains(t, out, env.fx.Layout.Root)

	settings, err := config.LoadSettings(env.fx.App.Settings)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.Dir != env.fx.Layout.Root || len(settings.DirRecent) != 1 {
		t.Fatalf("unexpected settings: %+v", settings)
	}

	out, err = runCLI(t, []string{"--home", home, "project", "show"})
	if err != nil {
		t.Fatalf("project show: %v", err)
	}
	requireContains(t, out, "json")
	requireContains(t, out, "yes")

	out, err = runCLI(t, []string{"--home", home, "project", "list"})
	if err != nil {
		t.Fatalf("project list: %v", err)
	}
	requireContains(t, out, env.fx.Layout.Root)

	if err := os.RemoveAll(env.fx.Layout.In); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, []string{"--home", home, "project", "list"})
	if err != nil {
		t.Fatalf("project list after removal: %v", err)
	}
	requireContains(t, out, "No recent projects")
}

func TestProjectUseRejectsInvalidDir(t *testing.T) {
	home := t.TempDir()
	if _, err := runCLI(t, []string{"--home", home, "project", "use", t.TempDir()}); err == nil {
		t.Fatal("expected invalid project error")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)

	out, err := env.run(t, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote default project configuration")
	if _, err := os.Stat(env.fx.App.DefaultProjectConfig); err != nil {
		t.Fatalf("expected default config: %v", err)
	}
	if _, err := env.run(t, "config", "init"); err == nil {
		t.Fatal("expected existing config to be refused")
	}
	if _, err := env.run(t, "config", "init", "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, err = env.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, `"formats"`)
	requireContains(t, out, `"cover_small"`)
}

func TestDoctorReportsChecks(t *testing.T) {
	env := setupCLIEnv(t, encoderStub)
	out, err := env.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "Input directory")
	requireContains(t, out, "ffmpeg version test")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{&exitError{code: 130}, 130},
		{fmt.Errorf("run: %w", faults.ErrInterrupted), 130},
		{faults.Wrap(faults.ErrConfigParse, "config", "", "bad", nil), 1},
		{errors.New("other"), 1},
	}
	for _, tc := range tests {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := parseFormats([]string{"mp3,FLAC", "mp3", " ogg "})
	if err != nil {
		t.Fatalf("parseFormats: %v", err)
	}
	want := []media.Format{media.MP3, media.FLAC, media.OGG}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if got, _ := parseFormats(nil); got != nil {
		t.Fatalf("expected nil for no flags, got %v", got)
	}
}
