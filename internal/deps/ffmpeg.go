package deps

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// FFmpegRequirements lists the encoder (required) and prober (optional). A
// missing prober only means every format uses its fallback quality.
func FFmpegRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     orDefault(ffmpegBinary, "ffmpeg"),
			Description: "Required for encoding and ogg tagging",
			VersionFlag: "-version",
		},
		{
			Name:        "FFprobe",
			Command:     orDefault(ffprobeBinary, "ffprobe"),
			Description: "Source bitrate detection; fallback quality is used without it",
			Optional:    true,
			VersionFlag: "-version",
		},
	}
}

// versionLine returns the first line printed by `<binary> <flag>`, or "" when
// the binary cannot be run.
func versionLine(ctx context.Context, binary, flag string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, binary, flag).Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
