// Package main hosts the QuickSaver CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the HTTP server in the foreground, scaffolds
// and validates configuration, reads the request ledger, sweeps unredeemed
// artifacts and diagnoses the local environment. Configuration resolution is
// centralized in commandContext so subcommands only deal with output.
//
// Keep this package lean: behaviour belongs in the internal packages, and
// commands here only surface it.
package main
