package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForYtDlp reports the FFmpeg binary yt-dlp will execute.
//
// yt-dlp prefers an ffmpeg sitting next to its own executable and otherwise
// resolves "ffmpeg" from PATH. Without it, mp4 requests fall back to
// single-file formats and mp3 extraction fails, so it is reported as optional.
func CheckFFmpegForYtDlp(ytdlpCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp to merge streams and extract mp3 audio",
		Optional:    true,
	}

	ytdlpBinary := strings.TrimSpace(ytdlpCommand)
	if ytdlpBinary != "" {
		if resolved, err := exec.LookPath(ytdlpBinary); err == nil {
			candidate := siblingBinary(resolved, "ffmpeg")
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				result.Command = candidate
				result.Path = candidate
				result.Available = true
				return result
			}
		}
	}

	const ffmpegName = "ffmpeg"
	result.Command = ffmpegName
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Path = ffmpegPath
		result.Available = true
		return result
	}
	result.Detail = fmt.Sprintf("binary %q not found; mp3 requests will fail", ffmpegName)
	return result
}

func siblingBinary(executable, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(executable), name)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
