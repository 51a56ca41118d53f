// Package logs reads clipper.log for the `clipper logs` command.
//
// Tail returns the last N lines (or everything after a byte offset) with
// bounded memory, optionally keeping only lines that mention a needle such as
// a correlation ID. Follow keeps polling from the returned offset until the
// context is cancelled, so `clipper logs --follow` behaves like tail -f.
package logs
