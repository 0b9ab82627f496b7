// Package logs reads the append-only task logs under the app log directory.
//
// Last returns the final lines with bounded memory, ReadFrom returns complete
// lines appended after an offset, and Follow polls until its context ends.
// `albumus logs` is built on these.
package logs
