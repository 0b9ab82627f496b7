// Package ffmpeg runs the ffmpeg encoder.
//
// Runner streams the merged stdout and stderr of each invocation line by line
// (splitting on both newline and carriage return so progress updates arrive
// as they are printed) and maps the outcome onto an exit code:
//
//   - 0 on success
//   - the process exit code on failure, wrapped as faults.ErrEncode
//   - 130 when the caller's context is cancelled (faults.ErrInterrupted)
//   - 124 when the per-invocation timeout expires (faults.ErrTimeout)
//   - 1 when the process cannot be started
//
// EncodeArgs and RemuxArgs build the argument vectors for transcoding a track
// and for rewriting container metadata without re-encoding.
package ffmpeg
