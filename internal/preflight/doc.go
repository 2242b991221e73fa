// Package preflight provides readiness checks for the filesystem paths and
// listen address that libris depends on.
//
// These checks run in two contexts:
//   - librisd calls RunAll before opening the store. If any check fails the
//     daemon refuses to start instead of failing on the first write.
//   - The CLI "libris status" command prints the same results next to the
//     daemon and database summary.
package preflight
