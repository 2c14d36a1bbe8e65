// Package logs reads the gotranscribe log file for the `logs` command.
//
// Tail returns the last N lines or everything after a byte offset, and in
// follow mode polls until new lines arrive or the wait elapses. An optional
// Match filter narrows output to lines containing a substring, which is how
// the CLI shows the entries of a single job.
package logs
