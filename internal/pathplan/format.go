package pathplan

import (
	"fmt"
	"strings"

	"songshift/internal/services"
)

// Format is a target container/codec identified by its file extension.
type Format string

const (
	FormatNone Format = ""
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatM4A  Format = "m4a"
	FormatFLAC Format = "flac"
	FormatWebM Format = "webm"
)

// Formats lists the supported targets in display order.
var Formats = []Format{FormatWAV, FormatMP3, FormatM4A, FormatFLAC, FormatWebM}

// ParseFormat validates a user-supplied format. Empty input means no transcode.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))
	if normalized == "" {
		return FormatNone, nil
	}
	for _, f := range Formats {
		if string(f) == normalized {
			return f, nil
		}
	}
	return FormatNone, services.Wrap(services.ErrInvalidOutputFormat, "validate", "format", fmt.Sprintf("unsupported format %q", value), nil)
}

// Valid reports whether f is one of the supported targets.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Ext returns the extension with a leading dot.
func (f Format) Ext() string {
	if f == FormatNone {
		return ""
	}
	return "." + string(f)
}

func (f Format) String() string { return string(f) }
