// Package main hosts the albumus CLI entrypoint and command graph.
//
// The Cobra command tree resolves the app directory, global settings and the
// active project, then hands off to the internal packages: compile runs the
// batch pipeline, clear removes generated output, and the remaining commands
// inspect settings, config, sources, history and the local toolchain.
//
// Keep this package lean: new behaviour belongs in internal packages first,
// surfaced here through a command or flag.
package main
