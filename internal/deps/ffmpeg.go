package deps

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// EncoderNames are the ffmpeg encoders the codec table relies on.
var EncoderNames = []string{"libmp3lame", "libvorbis", "aac", "flac"}

// CheckFFmpegComponents reports whether ffmpeg was built with each named
// component. kind is "encoders" or "filters", matching the ffmpeg listing flag.
func CheckFFmpegComponents(ctx context.Context, ffmpegBinary, kind string, names []string) []Status {
	results := make([]Status, 0, len(names))
	listing, err := listFFmpeg(ctx, ffmpegBinary, kind)
	for _, name := range names {
		status := Status{
			Name:        fmt.Sprintf("ffmpeg %s", name),
			Command:     ffmpegBinary,
			Description: fmt.Sprintf("ffmpeg %s entry", strings.TrimSuffix(kind, "s")),
		}
		switch {
		case err != nil:
			status.Detail = err.Error()
		case listing[name]:
			status.Available = true
		default:
			status.Detail = fmt.Sprintf("%s not compiled into %s", name, ffmpegBinary)
		}
		results = append(results, status)
	}
	return results
}

func listFFmpeg(ctx context.Context, binary, kind string) (map[string]bool, error) {
	out, err := exec.CommandContext(ctx, binary, "-hide_banner", "-"+kind).Output() //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("list ffmpeg %s: %w", kind, err)
	}
	return parseListing(string(out)), nil
}

// parseListing extracts component names from `ffmpeg -encoders` or
// `ffmpeg -filters` output. Encoder rows follow a "------" rule and look like
// " A..... libmp3lame  description"; filter rows carry an "A->A" signature in
// the third field. The name is the second field in both.
func parseListing(output string) map[string]bool {
	names := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(output))
	inTable := false
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(trimmed, "---") {
			inTable = true
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 || fields[1] == "=" {
			continue
		}
		if inTable || (len(fields) >= 3 && strings.Contains(fields[2], "->")) {
			names[fields[1]] = true
		}
	}
	return names
}
