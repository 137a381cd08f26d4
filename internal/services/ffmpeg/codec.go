package ffmpeg

import (
	"fmt"
	"strconv"

	"songshift/internal/pathplan"
	"songshift/internal/services"
)

// Bitrates holds encoder bitrates in kbit/s.
type Bitrates struct {
	WebM int
	MP3  int
	AAC  int
}

// DefaultBitrates returns the stock encoder bitrates.
func DefaultBitrates() Bitrates {
	return Bitrates{WebM: 160, MP3: 192, AAC: 192}
}

// CodecArgs returns the encoder arguments for format. WAV uses ffmpeg's
// default PCM encoder and needs none.
func CodecArgs(format pathplan.Format, b Bitrates) ([]string, error) {
	switch format {
	case pathplan.FormatWAV:
		return nil, nil
	case pathplan.FormatWebM:
		return []string{"-b:a", kbps(b.WebM), "-acodec", "libvorbis"}, nil
	case pathplan.FormatMP3:
		return []string{"-b:a", kbps(b.MP3), "-acodec", "libmp3lame"}, nil
	case pathplan.FormatM4A:
		return []string{"-b:a", kbps(b.AAC), "-acodec", "aac"}, nil
	case pathplan.FormatFLAC:
		return []string{"-acodec", "flac"}, nil
	default:
		return nil, services.Wrap(services.ErrInvalidOutputFormat, "transcode", "codec", fmt.Sprintf("unsupported format %q", format), nil)
	}
}

func kbps(value int) string {
	return strconv.Itoa(value) + "k"
}
