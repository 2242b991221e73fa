// Package main hosts the libris CLI entrypoint and command graph.
//
// Commands open the library database directly through internal/library and
// call the same api.LibraryService the daemon serves, so CLI and HTTP
// mutations share validation and logging. SQLite WAL mode lets the CLI run
// alongside a live daemon.
package main
