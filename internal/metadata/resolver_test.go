package metadata_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"albumus/internal/faults"
	"albumus/internal/metadata"
)

func writeLayers(t *testing.T, artist, album, track string) metadata.Paths {
	t.Helper()
	dir := t.TempDir()
	paths := metadata.Paths{
		Artist: filepath.Join(dir, "metadata_artist.json"),
		Album:  filepath.Join(dir, "metadata_album.json"),
		Track:  filepath.Join(dir, "metadata_track.json"),
	}
	for path, content := range map[string]string{paths.Artist: artist, paths.Album: album, paths.Track: track} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return paths
}

func TestResolveClosestLayerWins(t *testing.T) {
	paths := writeLayers(t,
		`{"genre":"Rock","artist":"A"}`,
		`{"genre":"Jazz","album":"X"}`,
		`{"01 Song.wav":{"genre":"Blues","tracknumber":3,"title":"Song One"}}`,
	)
	tags, number, ok, err := metadata.Resolve(paths, "01 Song.wav", 12)
	if err != nil || !ok {
		t.Fatalf("Resolve = %v, %v", ok, err)
	}
	if tags[metadata.KeyGenre] != "Blues" {
		t.Fatalf("genre = %q", tags[metadata.KeyGenre])
	}
	if tags[metadata.KeyAlbum] != "X" || tags[metadata.KeyArtist] != "A" {
		t.Fatalf("lower layers lost: %v", tags)
	}
	if number != "03" || tags[metadata.KeyTrackNumber] != "03" {
		t.Fatalf("track number = %q / %q", number, tags[metadata.KeyTrackNumber])
	}
}

func TestResolveMissingTrackEntryIsEmptyLayer(t *testing.T) {
	paths := writeLayers(t, `{}`, `{"album":"X"}`, `{"other.wav":{"tracknumber":1}}`)
	tags, number, ok, err := metadata.Resolve(paths, "song.wav", 3)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok || number != "" {
		t.Fatalf("expected no track number, got %q", number)
	}
	if tags[metadata.KeyAlbum] != "X" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestResolveMatchesDecomposedFilename(t *testing.T) {
	paths := writeLayers(t, `{}`, `{}`, `{"Café.wav":{"tracknumber":"2"}}`)
	decomposed := "Cafe\u0301.wav"
	_, number, ok, err := metadata.Resolve(paths, decomposed, 9)
	if err != nil || !ok {
		t.Fatalf("Resolve = %v, %v", ok, err)
	}
	if number != "2" {
		t.Fatalf("number = %q", number)
	}
}

func TestResolveIgnoresMalformedSiblingEntry(t *testing.T) {
	paths := writeLayers(t, `{}`, `{}`, `{"a.wav":"oops","b.wav":{"tracknumber":2,"title":"B"}}`)

	tags, number, ok, err := metadata.Resolve(paths, "b.wav", 2)
	if err != nil || !ok {
		t.Fatalf("Resolve(b.wav) = %v, %v", ok, err)
	}
	if number != "2" || tags[metadata.KeyTitle] != "B" {
		t.Fatalf("tags = %v", tags)
	}

	if _, _, ok, err := metadata.Resolve(paths, "c.wav", 2); err != nil || ok {
		t.Fatalf("Resolve(c.wav) = %v, %v; want empty layer", ok, err)
	}
}

func TestResolveStringifiesScalars(t *testing.T) {
	paths := writeLayers(t, `{"date":2024,"comment":true,"genre":null}`, `{}`, `{"a.wav":{"tracknumber":"  7 "}}`)
	tags, number, _, err := metadata.Resolve(paths, "a.wav", 100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tags[metadata.KeyDate] != "2024" || tags[metadata.KeyComment] != "true" {
		t.Fatalf("tags = %v", tags)
	}
	if _, present := tags[metadata.KeyGenre]; present {
		t.Fatal("null values should be dropped")
	}
	if number != "007" {
		t.Fatalf("number = %q", number)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		track  string
	}{
		{"non integer track number", `{}`, `{"a.wav":{"tracknumber":"three"}}`},
		{"fractional track number", `{}`, `{"a.wav":{"tracknumber":2.5}}`},
		{"negative track number", `{}`, `{"a.wav":{"tracknumber":-1}}`},
		{"malformed artist file", `{"genre":`, `{}`},
		{"track entry not an object", `{}`, `{"a.wav":"oops"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			paths := writeLayers(t, tc.artist, `{}`, tc.track)
			_, _, ok, err := metadata.Resolve(paths, "a.wav", 5)
			if !errors.Is(err, faults.ErrMetadata) {
				t.Fatalf("expected ErrMetadata, got %v", err)
			}
			if ok {
				t.Fatal("ok should be false on error")
			}
		})
	}
}

func TestResolveMissingFile(t *testing.T) {
	paths := writeLayers(t, `{}`, `{}`, `{}`)
	paths.Album = filepath.Join(t.TempDir(), "absent.json")
	if _, _, _, err := metadata.Resolve(paths, "a.wav", 1); !errors.Is(err, faults.ErrMetadata) {
		t.Fatalf("expected ErrMetadata, got %v", err)
	}
}

func TestPadTrackNumber(t *testing.T) {
	tests := []struct {
		raw   string
		total int
		want  string
	}{
		{"3", 12, "03"},
		{"3", 9, "3"},
		{"12", 12, "12"},
		{"5", 100, "005"},
		{"0", 10, "00"},
		{"123", 9, "123"},
	}
	for _, tc := range tests {
		got, err := metadata.PadTrackNumber(tc.raw, tc.total)
		if err != nil {
			t.Fatalf("PadTrackNumber(%q, %d): %v", tc.raw, tc.total, err)
		}
		if got != tc.want {
			t.Fatalf("PadTrackNumber(%q, %d) = %q, want %q", tc.raw, tc.total, got, tc.want)
		}
	}
}
