package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/Farman-RT/QuickSaver/internal/config"
)

// Requirement defines an external dependency QuickSaver relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Check reports the tools a QuickSaver server needs: yt-dlp itself and the
// ffmpeg it uses for merging streams and extracting mp3 audio.
func Check(cfg *config.Config) []Status {
	results := CheckBinaries([]Requirement{{
		Name:        "yt-dlp",
		Command:     cfg.Fetch.Binary,
		Description: "Fetches media from submitted URLs",
	}})
	return append(results, CheckFFmpegForYtDlp(cfg.Fetch.Binary))
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
