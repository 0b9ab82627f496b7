// Package logging assembles the slog loggers used by the albumus CLI and the
// compile pipeline.
//
// A run logs twice: human-readable status lines on the console at the
// configured level, and an append-only log file that always captures debug
// detail (including streamed encoder output). Both sinks share one record via
// a fan-out handler so every line carries the same run, artist, album, track
// and format attributes.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the pipeline.
package logging
