// Package deps reports the availability of the external binaries opuskit
// drives. A missing required binary is the only condition that aborts a
// command at startup.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"opuskit/internal/config"
)

// Requirement defines an external dependency opuskit relies on.
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
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Fetcher lists the binaries the track fetcher needs.
func Fetcher(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: cfg.Tools.YtDlp, Description: "metadata queries and downloads"},
		{Name: "ffmpeg", Command: cfg.Tools.FFmpeg, Description: "stream copy and metadata tagging"},
	}
}

// Embedder lists the binaries the cover embedder needs.
func Embedder(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "ffmpeg", Command: cfg.Tools.FFmpeg, Description: "attached-picture writes for opus/ogg"},
	}
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
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Require returns an error naming the first missing required binary, or nil
// when everything needed is available.
func Require(requirements []Requirement) error {
	for _, status := range CheckBinaries(requirements) {
		if status.Optional || status.Available {
			continue
		}
		return fmt.Errorf("required external tool %s unavailable: %s", status.Name, status.Detail)
	}
	return nil
}
