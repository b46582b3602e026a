// Package daemon coordinates the long-running QuickSaver process.
//
// It wires configuration, the scratch workspace, the ledger store and
// recorder, the fetch pipeline and the HTTP server into a single lifecycle,
// with flock-based locking to prevent two servers sharing one data directory.
// A background sweeper reclaims artifacts whose tokens were never redeemed.
//
// Keep request handling in the api, fetch and delivery packages; the daemon
// focuses on startup, shutdown and health reporting.
package daemon
