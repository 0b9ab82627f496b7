// Package faults defines the error taxonomy shared by the compile pipeline.
//
// Key responsibilities:
//   - Sentinel markers that classify failures by blast radius (run, track,
//     format) so callers can decide whether to continue.
//   - The Wrap helper that prefixes stage and operation context while keeping
//     the marker reachable through errors.Is.
//   - Context helpers that stamp run identifiers and stage names for logging.
//
// Only configuration, preflight and lock failures end a run; everything else
// is recorded against the narrowest unit and the batch moves on.
package faults
