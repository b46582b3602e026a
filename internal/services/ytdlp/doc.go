// Package ytdlp wraps the yt-dlp command line.
//
// BuildArgs turns a fetch into the argument vector, and Client runs it through
// an injectable Executor so callers can substitute a stub in tests. Output is
// captured rather than streamed; only its tail is kept for diagnostics.
package ytdlp
