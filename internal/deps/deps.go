// Package deps reports whether the external media tools are installed.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines an external binary tapeshelf relies on.
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
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MediaRequirements lists the ffmpeg and ffprobe binaries used for export.
func MediaRequirements(ffmpeg, ffprobe string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Required for decoding and encoding sessions",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobe,
			Description: "Required for stream inspection and duration totals",
		},
	}
}

// ExportEncoders are the ffmpeg encoders the session writer selects by
// output extension.
var ExportEncoders = []string{"pcm_s16le", "aac", "libmp3lame"}

// CheckEncoders lists ffmpeg's encoders and reports one Status per name.
func CheckEncoders(ctx context.Context, ffmpeg string, names []string) []Status {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	output, runErr := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-encoders").Output()
	available := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// Encoder lines look like " A..... aac   AAC (Advanced Audio Coding)".
		if len(fields) >= 2 && len(fields[0]) == 6 {
			available[fields[1]] = true
		}
	}

	results := make([]Status, 0, len(names))
	for _, name := range names {
		status := Status{
			Name:        "Encoder " + name,
			Command:     ffmpeg,
			Description: "ffmpeg encoder",
			Available:   available[name],
		}
		switch {
		case runErr != nil:
			status.Detail = fmt.Sprintf("list encoders: %v", runErr)
		case !status.Available:
			status.Detail = fmt.Sprintf("encoder %q not compiled into ffmpeg", name)
		}
		results = append(results, status)
	}
	return results
}
