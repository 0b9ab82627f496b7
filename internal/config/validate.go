package config

import (
	"fmt"

	"albumus/internal/faults"
)

// Validate ensures the configuration is usable. Failures are reported as
// config parse errors because they end the run the same way.
func (p *Project) Validate() error {
	if err := p.validate(); err != nil {
		return faults.Wrap(faults.ErrConfigParse, "config", "validate", "", err)
	}
	return nil
}

func (p *Project) validate() error {
	seen := make(map[string]struct{}, len(p.Formats))
	for _, f := range p.Formats {
		if !f.Valid() {
			return fmt.Errorf("formats: unsupported value %q", f)
		}
		if _, dup := seen[string(f)]; dup {
			return fmt.Errorf("formats: %q listed twice", f)
		}
		seen[string(f)] = struct{}{}
	}
	ogg := p.FFmpeg.BitrateStrategy.OGG
	if ogg.MinQuality > ogg.MaxQuality {
		return fmt.Errorf("ffmpeg.bitrate_strategy.ogg.min_quality (%d) exceeds max_quality (%d)", ogg.MinQuality, ogg.MaxQuality)
	}
	if p.FFmpeg.TimeoutSeconds < 0 {
		return fmt.Errorf("ffmpeg.timeout_seconds must not be negative")
	}
	for name, size := range p.Output.ArtSizes {
		if name == "" {
			return fmt.Errorf("output.art_sizes: empty size name")
		}
		if size.Width <= 0 || size.Height <= 0 {
			return fmt.Errorf("output.art_sizes.%s: dimensions must be positive", name)
		}
	}
	switch p.Output.ImageOutputFormat {
	case "JPEG", "PNG":
	default:
		return fmt.Errorf("output.image_output_format: unsupported value %q", p.Output.ImageOutputFormat)
	}
	if p.Output.ImageQuality < 1 || p.Output.ImageQuality > 100 {
		return fmt.Errorf("output.image_quality must be between 1 and 100, got %d", p.Output.ImageQuality)
	}
	if p.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1, got %d", p.Pipeline.Workers)
	}
	return nil
}
