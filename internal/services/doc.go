// Package services defines shared utilities consumed by the fetch pipeline and
// the external tool clients beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp correlation and fetch identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the HTTP surface
//     map failures to status codes with errors.Is.
//
// Subpackages wrap individual external tools (yt-dlp) behind testable
// executors.
package services
