// Package bitrate picks encoder quality parameters for each output format from
// the probed bitrate of the source track.
package bitrate

import (
	"fmt"

	"albumus/internal/config"
	"albumus/internal/media"
)

// Mode says how Decision.Value is passed to the encoder.
type Mode string

const (
	// ModeMatch targets a constant bitrate, Value in kbps.
	ModeMatch Mode = "match"
	// ModeQScale selects a variable quality level.
	ModeQScale Mode = "qscale"
	// ModeCompression sets a lossless compression level.
	ModeCompression Mode = "compression"
	// ModeNone passes no quality parameters.
	ModeNone Mode = "none"
)

const (
	flacCompressionLevel = 8
	minMP3Kbps           = 8
)

// Decision is the encoder parameter chosen for one track and format.
type Decision struct {
	Format media.Format
	Mode   Mode
	Value  int64
}

func (d Decision) String() string {
	switch d.Mode {
	case ModeMatch:
		return fmt.Sprintf("%s match %dk", d.Format, d.Value)
	case ModeQScale:
		return fmt.Sprintf("%s qscale %d", d.Format, d.Value)
	case ModeCompression:
		return fmt.Sprintf("%s compression %d", d.Format, d.Value)
	default:
		return fmt.Sprintf("%s default", d.Format)
	}
}

// Probe is the measured source bitrate. Known is false when the prober was
// unavailable or returned nothing usable.
type Probe struct {
	BitsPerSecond int64
	Known         bool
}

// MP3 matches the source bitrate when known, otherwise uses the fallback
// quality level.
func MP3(sourceBPS int64, known bool, fallbackQ int) Decision {
	if known && sourceBPS > 0 {
		kbps := sourceBPS / 1000
		if kbps < minMP3Kbps {
			kbps = minMP3Kbps
		}
		return Decision{Format: media.MP3, Mode: ModeMatch, Value: kbps}
	}
	return Decision{Format: media.MP3, Mode: ModeQScale, Value: int64(fallbackQ)}
}

// OGG maps the source bitrate onto a Vorbis quality level:
// clamp(floor((source - base) / step), minQ, maxQ).
func OGG(sourceBPS int64, known bool, minQ, maxQ int, baseBPS, stepBPS int64, fallbackQ int) Decision {
	if !known || sourceBPS <= 0 || stepBPS <= 0 {
		return Decision{Format: media.OGG, Mode: ModeQScale, Value: int64(fallbackQ)}
	}
	q := floorDiv(sourceBPS-baseBPS, stepBPS)
	if q < int64(minQ) {
		q = int64(minQ)
	}
	if q > int64(maxQ) {
		q = int64(maxQ)
	}
	return Decision{Format: media.OGG, Mode: ModeQScale, Value: q}
}

func FLAC() Decision {
	return Decision{Format: media.FLAC, Mode: ModeCompression, Value: flacCompressionLevel}
}

func WAV() Decision {
	return Decision{Format: media.WAV, Mode: ModeNone}
}

// Decide dispatches to the per-format rule.
func Decide(format media.Format, probe Probe, strategy config.BitrateStrategy) (Decision, error) {
	switch format {
	case media.MP3:
		return MP3(probe.BitsPerSecond, probe.Known, strategy.MP3.FallbackQScale), nil
	case media.OGG:
		o := strategy.OGG
		return OGG(probe.BitsPerSecond, probe.Known, o.MinQuality, o.MaxQuality, o.BaseBitrate, o.Step, o.FallbackQScale), nil
	case media.FLAC:
		return FLAC(), nil
	case media.WAV:
		return WAV(), nil
	default:
		return Decision{}, fmt.Errorf("unsupported format %q", format)
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
