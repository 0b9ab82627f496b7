// Package compile is the batch orchestrator. It walks <in>/<artist>/<album>,
// resolves metadata per track, and for every requested format probes,
// encodes, and tags one output under <out>/<artist>/<album>/<format>. It also
// derives the album art variants once per album.
//
// Failures stay at the narrowest scope: a broken album, track, or format is
// recorded in the Report and logged, and its siblings carry on. With
// pipeline.workers above one, tracks run on a bounded pool while the formats of
// a single track stay sequential.
package compile
