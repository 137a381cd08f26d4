package pipeline

import (
	"context"
	"time"

	"songshift/internal/pathplan"
)

// PitchShifter writes input shifted by semitones to output as 24-bit PCM WAV.
type PitchShifter interface {
	Shift(ctx context.Context, input, output string, semitones float64) error
}

// Separator writes vocals and accompaniment stems for input into
// {outputDir}/{input base name}/ and returns them keyed by stem name.
type Separator interface {
	Separate(ctx context.Context, input, outputDir string, durationHint time.Duration) (map[string]string, error)
}

// Transcoder converts input to output in the given format.
type Transcoder interface {
	Transcode(ctx context.Context, input, output string, format pathplan.Format) error
}

// Archiver zips sourceDir into destWithoutExt + ".zip" and returns the path.
type Archiver interface {
	Zip(ctx context.Context, sourceDir, destWithoutExt string) (string, error)
}

// Prober reports the playback length of an audio file.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Backends groups the external collaborators. Only the backends a request
// needs must be set; Prober is optional.
type Backends struct {
	Pitch      PitchShifter
	Separator  Separator
	Transcoder Transcoder
	Archiver   Archiver
	Prober     Prober
}
