// Package logs reads back the server's log file for the CLI.
//
// Last returns the newest lines, optionally narrowed to one fetch or token, and
// Follow keeps streaming appended lines until its context ends.
package logs
