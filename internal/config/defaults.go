package config

import (
	_ "embed"

	"albumus/internal/media"
)

//go:embed default_project.json
var defaultProjectJSON []byte

const (
	defaultAppRoot           = "~/.config/albumus"
	defaultDirRecentMax      = 10
	defaultMP3FallbackQScale = 2
	defaultOGGMinQuality     = 0
	defaultOGGMaxQuality     = 10
	defaultOGGBaseBitrate    = 64000
	defaultOGGStep           = 16000
	defaultOGGFallbackQScale = 10
	defaultImageFormat       = "JPEG"
	defaultImageQuality      = 95
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultWorkers           = 1
)

// DefaultProjectJSON returns the shipped default project configuration.
func DefaultProjectJSON() []byte {
	return append([]byte(nil), defaultProjectJSON...)
}

// defaultProject holds the values used when a key is absent after merging.
// ArtSizes is deliberately nil: sizes come only from configuration files, so
// an override that names one size drops the others.
func defaultProject() Project {
	return Project{
		Formats: append([]media.Format(nil), media.AllFormats...),
		FFmpeg: FFmpeg{
			Binary:      defaultFFmpegBinary,
			ProbeBinary: defaultFFprobeBinary,
			BitrateStrategy: BitrateStrategy{
				MP3: MP3Strategy{FallbackQScale: defaultMP3FallbackQScale},
				OGG: OGGStrategy{
					MinQuality:     defaultOGGMinQuality,
					MaxQuality:     defaultOGGMaxQuality,
					BaseBitrate:    defaultOGGBaseBitrate,
					Step:           defaultOGGStep,
					FallbackQScale: defaultOGGFallbackQScale,
				},
			},
		},
		Output: Output{
			ImageOutputFormat: defaultImageFormat,
			ImageQuality:      defaultImageQuality,
		},
		Logging:  Logging{LogRelativePaths: true},
		Pipeline: Pipeline{Workers: defaultWorkers},
	}
}

// DefaultSettings returns the settings written when none exist yet.
func DefaultSettings() Settings {
	return Settings{DirRecentMax: defaultDirRecentMax}
}
