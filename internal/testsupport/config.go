package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"albumus/internal/config"
	"albumus/internal/project"
)

// Fixture is a temporary app directory plus one project directory.
type Fixture struct {
	t       testing.TB
	BaseDir string
	App     config.AppPaths
	Layout  project.Layout
}

// ProjectOption customizes a generated fixture.
type ProjectOption func(*Fixture)

// NewProject creates an app directory and a valid project (in/ plus
// config.json) under a fresh temp directory, then applies opts.
func NewProject(t testing.TB, opts ...ProjectOption) *Fixture {
	t.Helper()

	base := t.TempDir()
	app, err := config.ResolveAppPaths(filepath.Join(base, "app"))
	if err != nil {
		t.Fatalf("ResolveAppPaths: %v", err)
	}
	root := filepath.Join(base, "project")
	if err := os.MkdirAll(filepath.Join(root, "in"), 0o755); err != nil {
		t.Fatalf("mkdir in: %v", err)
	}
	WriteJSON(t, filepath.Join(root, "config.json"), map[string]any{})
	layout, err := project.New(root)
	if err != nil {
		t.Fatalf("project.New: %v", err)
	}
	f := &Fixture{t: t, BaseDir: base, App: app, Layout: layout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithProjectConfig replaces the project config.json content.
func WithProjectConfig(doc map[string]any) ProjectOption {
	return func(f *Fixture) {
		WriteJSON(f.t, f.Layout.Config, doc)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub ignores its arguments and exits 0. If names
// is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ProjectOption {
	return func(f *Fixture) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(f.BaseDir, "bin")
		for _, name := range names {
			WriteScript(f.t, filepath.Join(binDir, name), "exit 0\n")
		}
		PrependPath(f.t, binDir)
	}
}

// Album describes an album unit to lay out under in/.
type Album struct {
	Artist      string
	Name        string
	ArtistTags  map[string]any
	AlbumTags   map[string]any
	TrackTags   map[string]map[string]any
	Tracks      []string
	CoverWidth  int
	CoverHeight int
}

// WithAlbum writes an album unit: track files, the three metadata files and a
// folder.png cover when CoverWidth is positive. Artist metadata goes in the
// artist directory.
func WithAlbum(a Album) ProjectOption {
	return func(f *Fixture) {
		f.AddAlbum(a)
	}
}

// AddAlbum is WithAlbum for an existing fixture.
func (f *Fixture) AddAlbum(a Album) string {
	f.t.Helper()
	artistDir := filepath.Join(f.Layout.In, a.Artist)
	albumDir := filepath.Join(artistDir, a.Name)
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		f.t.Fatalf("mkdir album: %v", err)
	}
	WriteJSON(f.t, filepath.Join(artistDir, "metadata_artist.json"), orEmpty(a.ArtistTags))
	WriteJSON(f.t, filepath.Join(albumDir, "metadata_album.json"), orEmpty(a.AlbumTags))
	tracks := map[string]any{}
	for name, tags := range a.TrackTags {
		tracks[name] = tags
	}
	WriteJSON(f.t, filepath.Join(albumDir, "metadata_track.json"), tracks)
	for _, track := range a.Tracks {
		WriteFile(f.t, filepath.Join(albumDir, track), 64)
	}
	if a.CoverWidth > 0 && a.CoverHeight > 0 {
		WritePNG(f.t, filepath.Join(albumDir, "folder.png"), a.CoverWidth, a.CoverHeight)
	}
	return albumDir
}

// WriteJSON encodes v as indented JSON at path, creating parent directories.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
