package ffmpeg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"albumus/internal/bitrate"
	"albumus/internal/media"
)

// EncodeArgs builds the argument vector transcoding input to output according
// to the decision. Existing outputs are always overwritten and video streams
// (embedded source artwork) are dropped.
func EncodeArgs(input, output string, d bitrate.Decision) ([]string, error) {
	args := []string{"-hide_banner", "-y", "-i", input, "-vn"}
	switch d.Format {
	case media.MP3:
		args = append(args, "-codec:a", "libmp3lame")
		switch d.Mode {
		case bitrate.ModeMatch:
			args = append(args, "-b:a", fmt.Sprintf("%dk", d.Value))
		case bitrate.ModeQScale:
			args = append(args, "-qscale:a", strconv.FormatInt(d.Value, 10))
		default:
			return nil, fmt.Errorf("mp3: unsupported mode %q", d.Mode)
		}
	case media.OGG:
		if d.Mode != bitrate.ModeQScale {
			return nil, fmt.Errorf("ogg: unsupported mode %q", d.Mode)
		}
		args = append(args, "-codec:a", "libvorbis", "-qscale:a", strconv.FormatInt(d.Value, 10))
	case media.FLAC:
		args = append(args, "-c:a", "flac", "-compression_level", strconv.FormatInt(d.Value, 10))
	case media.WAV:
	default:
		return nil, fmt.Errorf("unsupported format %q", d.Format)
	}
	return append(args, output), nil
}

// RemuxArgs copies the audio streams of input into output unchanged and replaces
// the audio stream tags with the global section of metadataFile, an
// FFMETADATA1 document written by FormatMetadata.
func RemuxArgs(input, metadataFile, output string) []string {
	return []string{
		"-hide_banner", "-y",
		"-i", input,
		"-f", "ffmetadata", "-i", metadataFile,
		"-map", "0:a", "-c", "copy",
		"-map_metadata", "1",
		"-map_metadata:s:a", "1:g",
		output,
	}
}

var metadataEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"=", "\\=",
	";", "\\;",
	"#", "\\#",
	"\n", "\\\n",
)

// FormatMetadata renders tags as an FFMETADATA1 document with keys in sorted
// order.
func FormatMetadata(tags map[string]string) []byte {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	for _, k := range keys {
		b.WriteString(metadataEscaper.Replace(k))
		b.WriteByte('=')
		b.WriteString(metadataEscaper.Replace(tags[k]))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
