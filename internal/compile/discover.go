package compile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"albumus/internal/media"
	"albumus/internal/metadata"
)

// Fixed file names inside an album unit.
const (
	CoverFile         = "folder.png"
	ArtistMetadata    = "metadata_artist.json"
	AlbumMetadata     = "metadata_album.json"
	TrackMetadataFile = "metadata_track.json"
)

// Album is one album unit discovered under the input root.
type Album struct {
	Artist   string
	Name     string
	Dir      string
	Cover    string
	Metadata metadata.Paths
	// Tracks holds source file names in sorted order.
	Tracks []string
}

// Discover lists the albums under inputRoot in name order. Unreadable artist
// or album directories are returned as warnings; err is set only when
// inputRoot itself cannot be listed.
func Discover(inputRoot string) (albums []Album, warnings []error, err error) {
	artists, err := listDirs(inputRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("list input root: %w", err)
	}
	for _, artist := range artists {
		artistDir := filepath.Join(inputRoot, artist)
		names, err := listDirs(artistDir)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("list artist %s: %w", artist, err))
			continue
		}
		for _, name := range names {
			album, err := loadAlbum(artistDir, artist, name)
			if err != nil {
				warnings = append(warnings, err)
				continue
			}
			albums = append(albums, album)
		}
	}
	return albums, warnings, nil
}

func loadAlbum(artistDir, artist, name string) (Album, error) {
	dir := filepath.Join(artistDir, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Album{}, fmt.Errorf("list album %s/%s: %w", artist, name, err)
	}
	var tracks []string
	for _, entry := range entries {
		if entry.IsDir() || !media.IsSourceExtension(filepath.Ext(entry.Name())) {
			continue
		}
		tracks = append(tracks, entry.Name())
	}
	sort.Strings(tracks)
	return Album{
		Artist: artist,
		Name:   name,
		Dir:    dir,
		Cover:  filepath.Join(dir, CoverFile),
		Metadata: metadata.Paths{
			Artist: artistMetadataPath(artistDir, dir),
			Album:  filepath.Join(dir, AlbumMetadata),
			Track:  filepath.Join(dir, TrackMetadataFile),
		},
		Tracks: tracks,
	}, nil
}

// artistMetadataPath prefers the artist directory and falls back to a copy
// inside the album directory.
func artistMetadataPath(artistDir, albumDir string) string {
	primary := filepath.Join(artistDir, ArtistMetadata)
	if _, err := os.Stat(primary); err == nil {
		return primary
	}
	fallback := filepath.Join(albumDir, ArtistMetadata)
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return primary
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
