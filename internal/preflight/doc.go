// Package preflight provides readiness checks for the filesystem paths,
// binaries, and speech-to-text endpoint gotranscribe depends on.
//
// These checks run in two contexts:
//   - The pipeline and the API daemon call RunAll before doing work. Any
//     failed check aborts early instead of failing halfway through a job.
//   - The CLI "gotranscribe status" command adds CheckEndpoint, which makes
//     a network call, and displays every result.
package preflight
