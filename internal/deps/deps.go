package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"songshift/internal/config"
)

// Requirement defines an external tool songshift shells out to.
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
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// Requirements lists the tools the configured engines need. Tools for the
// engines that are not selected are reported as optional.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	rubberbandOptional := cfg.Pitch.Engine != config.PitchEngineRubberband
	spleeterOptional := cfg.Separation.Engine != config.SeparationEngineSpleeter
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Transcoding and audio decoding"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Duration probing for separation", Optional: true},
		{Name: "Rubber Band", Command: cfg.RubberbandBinary(), Description: "Pitch shifting", Optional: rubberbandOptional},
		{Name: "Spleeter", Command: binaryOr(cfg.Tools.Spleeter, "spleeter"), Description: "Vocal separation (spleeter engine)", Optional: spleeterOptional},
		{Name: "Demucs", Command: binaryOr(cfg.Tools.Demucs, "demucs"), Description: "Vocal separation (demucs engine)", Optional: !spleeterOptional},
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
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = resolved
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the required statuses that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}

func binaryOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
