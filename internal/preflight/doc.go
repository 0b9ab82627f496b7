// Package preflight provides readiness checks for the project directories
// and external binaries a compile run depends on.
//
// These checks run in two contexts:
//   - `albumus compile` and `albumus clear` call RunAll before doing any work.
//     If a required check fails, the run aborts before touching output.
//   - `albumus doctor` renders every result, optional ones included.
package preflight
