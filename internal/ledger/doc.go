// Package ledger keeps the append-only history of submitted URLs.
//
// Store wraps a SQLite database (modernc.org/sqlite, WAL mode) holding the
// urls table, and Recorder feeds it asynchronously so a slow disk never holds
// up a fetch. Ledger failures are logged and never surface to clients.
package ledger
