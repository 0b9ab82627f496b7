// Package ffprobe wraps the ffprobe binary.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio stream properties
//   - Format: container-level metadata (duration, size, bitrate, tags)
//
// Primary entry points:
//   - ProbeBitrate: reads the first audio stream bitrate for strategy selection
//   - Inspect: executes ffprobe and returns the parsed JSON Result
//
// ProbeBitrate never returns an error: an unusable answer is reported as an
// unknown bitrate so callers fall back to fixed quality settings.
package ffprobe
