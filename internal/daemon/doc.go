// Package daemon coordinates the long-running librisd process.
//
// It wires configuration, the library store, and the HTTP server into a single
// lifecycle with flock-based locking to prevent two daemons from serving the
// same data directory. Probe lets other processes (the CLI's status command)
// check for a running daemon without talking to it.
//
// Keep request handling in the server package and record rules in library;
// the daemon focuses on startup, shutdown, and status reporting.
package daemon
