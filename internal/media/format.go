// Package media holds the output format vocabulary shared by the encoder,
// tag writer and orchestrator.
package media

import (
	"fmt"
	"strings"
)

// Format names an output container the pipeline can produce. The string value
// doubles as the output subdirectory name and the file extension.
type Format string

const (
	MP3  Format = "mp3"
	FLAC Format = "flac"
	WAV  Format = "wav"
	OGG  Format = "ogg"
)

// AllFormats lists every supported format in default order.
var AllFormats = []Format{FLAC, MP3, OGG, WAV}

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(value)))
	if !f.Valid() {
		return "", fmt.Errorf("unsupported format %q (want one of mp3, flac, wav, ogg)", value)
	}
	return f, nil
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case MP3, FLAC, WAV, OGG:
		return true
	}
	return false
}

// Extension returns the output file extension without the dot.
func (f Format) Extension() string { return string(f) }

// Taggable reports whether outputs in this format receive tags and cover art.
func (f Format) Taggable() bool { return f != WAV }

// IsSourceExtension reports whether a file extension (with dot, any case)
// marks a track file inside an album directory.
func IsSourceExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".wav", ".flac", ".mp3", ".ogg":
		return true
	}
	return false
}
