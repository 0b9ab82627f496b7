package compile

import (
	"path/filepath"
	"strings"

	"albumus/internal/media"
	"albumus/internal/metadata"
)

var titleReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// BaseName returns <number>_<title> with spaces and path separators turned
// into underscores. A blank title falls back to the source file stem.
func BaseName(trackNumber string, tags metadata.Tags, sourceFile string) string {
	title := strings.TrimSpace(tags[metadata.KeyTitle])
	if title == "" {
		title = strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	}
	return trackNumber + "_" + titleReplacer.Replace(title)
}

// OutputPath is <out>/<artist>/<album>/<format>/<base>.<ext>.
func OutputPath(outputRoot string, album Album, format media.Format, base string) string {
	return filepath.Join(AlbumOutputDir(outputRoot, album), string(format), base+"."+format.Extension())
}

// AlbumOutputDir mirrors the artist and album directory names under outputRoot.
func AlbumOutputDir(outputRoot string, album Album) string {
	return filepath.Join(outputRoot, album.Artist, album.Name)
}
