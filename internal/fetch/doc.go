// Package fetch coordinates a single submission: URL validation, ledger
// recording, the yt-dlp run under a hard timeout, and artifact resolution.
//
// Failures carry the services error markers; Reason turns them into the four
// outcomes clients can observe.
package fetch
