// Package workspace manages the scratch directory where downloaded media waits
// for redemption.
//
// It allocates per-fetch identifiers, builds the yt-dlp output template,
// resolves finished artifacts while skipping in-progress files, and maps
// client tokens back to paths without letting them escape the directory.
// Sweep reclaims files that were never redeemed.
package workspace
