// Package config loads, normalizes, and validates QuickSaver configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the environment overrides hosting
// platforms rely on (PORT, HOST, QUICKSAVER_DEBUG). The Config type centralizes
// every knob the server and CLI need so the scratch directory, the ledger
// database and the yt-dlp policy are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
