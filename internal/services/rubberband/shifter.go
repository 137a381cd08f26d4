package rubberband

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"songshift/internal/pathplan"
	"songshift/internal/services"
)

const scratchSuffix = ".decoded.wav"

// Decoder converts arbitrary audio into 24-bit PCM WAV.
type Decoder interface {
	DecodePCM24(ctx context.Context, input, output string) error
}

// FilterRunner applies an ffmpeg audio filter graph.
type FilterRunner interface {
	Filter(ctx context.Context, input, output, filterGraph string) error
}

// PitchRatio converts a semitone shift into a frequency ratio.
func PitchRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

// Option configures the CLI engine.
type Option func(*CLI)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *CLI) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds the rubberband invocation. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *CLI) { c.timeout = d }
}

// CLI shifts pitch with the rubberband executable.
type CLI struct {
	binary  string
	decoder Decoder
	exec    services.Executor
	timeout time.Duration
}

// NewCLI constructs the rubberband CLI engine.
func NewCLI(binary string, decoder Decoder, opts ...Option) (*CLI, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("rubberband binary required")
	}
	if decoder == nil {
		return nil, errors.New("rubberband decoder required")
	}
	c := &CLI{binary: binary, decoder: decoder, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Shift writes input shifted by semitones to output.
func (c *CLI) Shift(ctx context.Context, input, output string, semitones float64) error {
	scratch := pathplan.StripExt(output) + scratchSuffix
	defer os.Remove(scratch)

	if err := c.decoder.DecodePCM24(ctx, input, scratch); err != nil {
		return fmt.Errorf("decode for pitch shift: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	args := []string{"--pitch", pathplan.FormatSemitones(semitones), "--quiet", scratch, output}
	stderr, err := c.exec.Run(runCtx, c.binary, args)
	return services.ClassifyExec("pitch", c.binary, stderr, err)
}

// Filter shifts pitch with ffmpeg's rubberband filter.
type Filter struct {
	runner FilterRunner
}

// NewFilter constructs the ffmpeg filter engine.
func NewFilter(runner FilterRunner) (*Filter, error) {
	if runner == nil {
		return nil, errors.New("ffmpeg runner required")
	}
	return &Filter{runner: runner}, nil
}

// Shift writes input shifted by semitones to output.
func (f *Filter) Shift(ctx context.Context, input, output string, semitones float64) error {
	graph := "rubberband=pitch=" + strconv.FormatFloat(PitchRatio(semitones), 'f', 6, 64)
	return f.runner.Filter(ctx, input, output, graph)
}
