// Package logs reads the librisd log file for `libris logs`.
//
// Tail returns the last N lines or everything after a byte offset, and in
// follow mode polls until new lines arrive or the wait expires. A Match
// string narrows output to lines containing it, which is how a single
// request is traced by its X-Request-ID.
package logs
