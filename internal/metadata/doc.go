// Package metadata resolves the tags for one track by layering the artist,
// album and per-track JSON files of an album unit, closest layer winning, and
// normalizes the track number to the album's zero-padded width.
package metadata
